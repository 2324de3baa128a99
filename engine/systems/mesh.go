package systems

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaghettifunk/configurator/engine/assets"
	"github.com/spaghettifunk/configurator/engine/assets/loaders"
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// SceneLoadedEvent is posted with EVENT_CODE_SCENE_LOADED once a model load
// finished, successfully or not.
type SceneLoadedEvent struct {
	Source string
	Scene  *metadata.Scene
	Err    error
}

type meshLoadParams struct {
	ctx    context.Context
	source string
}

// MeshLoaderSystem loads models on the job system and keeps the bytes of the
// last load of every source so a scene can be rebuilt without fetching again.
type MeshLoaderSystem struct {
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	events       *core.EventSystem

	mutex sync.Mutex
	cache map[string]*metadata.Resource
}

func NewMeshLoaderSystem(js *JobSystem, am *assets.AssetManager, es *core.EventSystem) (*MeshLoaderSystem, error) {
	if js == nil || am == nil || es == nil {
		return nil, fmt.Errorf("func NewMeshLoaderSystem - job system, asset manager and event system are required")
	}
	return &MeshLoaderSystem{
		jobSystem:    js,
		assetManager: am,
		events:       es,
		cache:        make(map[string]*metadata.Resource),
	}, nil
}

func (mls *MeshLoaderSystem) Shutdown() error {
	mls.mutex.Lock()
	defer mls.mutex.Unlock()
	for source, res := range mls.cache {
		if err := mls.assetManager.UnloadAsset(res); err != nil {
			core.LogError(err.Error())
		}
		delete(mls.cache, source)
	}
	return nil
}

/**
 * @brief Loads the model on a job worker. The outcome is posted to the event
 * system as EVENT_CODE_SCENE_LOADED.
 *
 * @param ctx Bounds the fetch of remote models.
 * @param source A local path or an http(s) URL.
 */
func (mls *MeshLoaderSystem) Load(ctx context.Context, source string) error {
	return mls.jobSystem.Submit(metadata.JobTask{
		Name:        "load " + source,
		OnStart:     mls.meshLoadJobStart,
		OnComplete:  mls.meshLoadJobSuccess,
		OnFailure:   func(err error) { mls.meshLoadJobFail(source, err) },
		InputParams: meshLoadParams{ctx: ctx, source: source},
	})
}

// LoadNow loads the model on the calling goroutine.
func (mls *MeshLoaderSystem) LoadNow(ctx context.Context, source string) (*metadata.Scene, error) {
	res, err := mls.assetManager.LoadAsset(ctx, source, metadata.ResourceTypeModel, nil)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", source, err)
	}
	scene, ok := res.Data.(*metadata.Scene)
	if !ok {
		return nil, fmt.Errorf("loading model %s: unexpected resource data %T", source, res.Data)
	}

	mls.mutex.Lock()
	mls.cache[source] = res
	mls.mutex.Unlock()

	core.LogInfo("Loaded model '%s' from %s.", scene.Name, source)
	return scene, nil
}

/**
 * @brief Rebuilds the scene of source from the cached model bytes. Every mesh
 * gets a fresh id and its authored material. Sources never loaded are loaded.
 */
func (mls *MeshLoaderSystem) Reload(ctx context.Context, source string) (*metadata.Scene, error) {
	mls.mutex.Lock()
	res, ok := mls.cache[source]
	mls.mutex.Unlock()
	if !ok {
		return mls.LoadNow(ctx, source)
	}

	l, ok := mls.assetManager.Loader(metadata.ResourceTypeModel)
	if !ok {
		return nil, core.ErrUnknownResource
	}
	ml, ok := l.(*loaders.ModelLoader)
	if !ok {
		return nil, fmt.Errorf("model loader of type %T cannot decode cached bytes", l)
	}
	scene, err := ml.Decode(res.Name, res.RawData)
	if err != nil {
		return nil, err
	}
	scene.Source = source
	core.LogDebug("Rebuilt model '%s' from cache.", scene.Name)
	return scene, nil
}

// Cached returns the raw bytes of the last successful load of source.
func (mls *MeshLoaderSystem) Cached(source string) ([]byte, bool) {
	mls.mutex.Lock()
	defer mls.mutex.Unlock()
	res, ok := mls.cache[source]
	if !ok {
		return nil, false
	}
	return res.RawData, true
}

func (mls *MeshLoaderSystem) meshLoadJobStart(params interface{}) (interface{}, error) {
	p, ok := params.(meshLoadParams)
	if !ok {
		err := fmt.Errorf("failed to cast params to meshLoadParams")
		core.LogError(err.Error())
		return nil, err
	}
	scene, err := mls.LoadNow(p.ctx, p.source)
	if err != nil {
		return nil, err
	}
	return &SceneLoadedEvent{Source: p.source, Scene: scene}, nil
}

/**
 * @brief Called when the job completes successfully.
 *
 * @param result The *SceneLoadedEvent built by the job.
 */
func (mls *MeshLoaderSystem) meshLoadJobSuccess(result interface{}) {
	if err := mls.events.Post(core.EventContext{
		Type:   core.EVENT_CODE_SCENE_LOADED,
		Sender: mls,
		Data:   result,
	}); err != nil {
		core.LogError(err.Error())
	}
}

/**
 * @brief Called when the job fails.
 */
func (mls *MeshLoaderSystem) meshLoadJobFail(source string, err error) {
	core.LogError("Failed to load model '%s'.", source)
	if perr := mls.events.Post(core.EventContext{
		Type:   core.EVENT_CODE_SCENE_LOADED,
		Sender: mls,
		Data:   &SceneLoadedEvent{Source: source, Err: err},
	}); perr != nil {
		core.LogError(perr.Error())
	}
}
