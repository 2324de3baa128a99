package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/configurator/engine/assets/loaders"
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// PaletteEvent is posted with EVENT_CODE_PALETTE_RELOADED.
type PaletteEvent struct {
	Path    string
	Palette *metadata.Palette
}

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
	Watched    bool
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	events  *core.EventSystem

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(events *core.EventSystem) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		events:   events,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize registers the built-in loaders and starts the watcher goroutine.
func (am *AssetManager) Initialize(client *http.Client) error {
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{BinaryLoader: loaders.BinaryLoader{Client: client}})
	am.registerLoader(metadata.ResourceTypePalette, &loaders.PaletteLoader{BinaryLoader: loaders.BinaryLoader{Client: client}})

	go am.start()
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Loader returns the loader registered for the type.
func (am *AssetManager) Loader(assetType metadata.ResourceType) (Loader, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	l, ok := am.loaders[assetType]
	return l, ok
}

// LoadAsset loads an asset using the loader registered for its type. Remote
// sources are fetched with ctx.
func (am *AssetManager) LoadAsset(ctx context.Context, path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if resourceType == metadata.ResourceTypeNone {
		resourceType = determineAssetType(path)
	}
	loader, ok := am.Loader(resourceType)
	if !ok {
		return nil, fmt.Errorf("no loader registered for %s (%s): %w", path, resourceType, core.ErrUnknownResource)
	}

	res, err := loader.Load(ctx, path, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	info := am.assets[path]
	info.Path = path
	info.Type = resourceType
	info.LastLoaded = time.Now()
	am.assets[path] = info
	am.mutex.Unlock()

	core.LogDebug("Loaded %s asset '%s' (%d bytes).", resourceType, path, res.DataSize)
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	loader, ok := am.Loader(asset.Type)
	if !ok {
		return core.ErrUnknownResource
	}
	return loader.Unload(asset)
}

// Asset returns what the manager knows about a loaded or watched path.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Clean(path)]
	if !ok {
		info, ok = am.assets[path]
	}
	return info, ok
}

/**
 * @brief Watches a local palette file. Every write or re-creation of the file
 * reloads it and posts EVENT_CODE_PALETTE_RELOADED. The parent directory is
 * watched so that editors replacing the file atomically are noticed too.
 */
func (am *AssetManager) Watch(path string) error {
	if loaders.IsRemote(path) {
		return fmt.Errorf("cannot watch remote source %s", path)
	}
	clean := filepath.Clean(path)

	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return errors.New("asset watcher already closed")
	}
	if err := am.fsnotify.Add(filepath.Dir(clean)); err != nil {
		am.mutex.Unlock()
		return err
	}
	info := am.assets[clean]
	info.Path = clean
	info.Type = determineAssetType(clean)
	info.Watched = true
	am.assets[clean] = info
	am.mutex.Unlock()

	core.LogInfo("Watching '%s' for changes.", clean)
	return nil
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

// Handle the creation or modification of a watched file
func (am *AssetManager) handleFileEvent(path string) {
	clean := filepath.Clean(path)
	am.mutex.RLock()
	info, ok := am.assets[clean]
	am.mutex.RUnlock()
	if !ok || !info.Watched {
		return
	}

	switch info.Type {
	case metadata.ResourceTypePalette:
		res, err := am.LoadAsset(context.Background(), clean, metadata.ResourceTypePalette, nil)
		if err != nil {
			// Editors often write in several steps; the next write retries.
			core.LogWarn("Failed to reload palette '%s': %s", clean, err.Error())
			return
		}
		if err := am.events.Post(core.EventContext{
			Type:   core.EVENT_CODE_PALETTE_RELOADED,
			Sender: am,
			Data:   &PaletteEvent{Path: clean, Palette: res.Data.(*metadata.Palette)},
		}); err != nil {
			core.LogError(err.Error())
		}
	default:
		core.LogDebug("Ignoring change of '%s'.", clean)
	}
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	return am.fsnotify.Close()
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".glb", ".gltf":
		return metadata.ResourceTypeModel
	case ".toml":
		return metadata.ResourceTypePalette
	default:
		return metadata.ResourceTypeNone
	}
}
