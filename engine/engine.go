package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/spaghettifunk/configurator/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Capacity of the event queue shared by every host goroutine.
const eventQueueSize = 256

type registration struct {
	code core.EventCode
	id   uint64
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	events        *core.EventSystem
	input         *core.Input
	host          platform.Host
	systemManager *systems.SystemManager
	clock         *core.Clock
	handlers      []registration

	ctx    context.Context
	cancel context.CancelFunc

	shutdownOnce sync.Once
	shutdownErr  error
	done         chan struct{}
}

func New(g *Game) (*Engine, error) {
	config := g.ApplicationConfig
	if config == nil {
		config = DefaultApplicationConfig()
		g.ApplicationConfig = config
	}
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogSetLevel(core.ParseLogLevel(config.LogLevel))

	es := core.NewEventSystem(eventQueueSize)
	input := core.NewInput(es)

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Material: systems.MaterialSystemConfig{
			Roughness: config.Material.Roughness,
			Metalness: config.Material.Metalness,
		},
		Binder: systems.SceneBinderConfig{
			HighlightColour:    metadata.MustParseColour(config.Highlight.Colour),
			HighlightIntensity: config.Highlight.Intensity,
		},
		Workers:    config.Jobs.Workers,
		Queue:      config.Jobs.Queue,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}, es)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	var host platform.Host
	switch config.Host.Kind {
	case HostKindHeadless:
		host = platform.NewHeadlessHost(platform.HeadlessHostConfig{
			PrintDir: config.Host.PrintDir,
			Commands: g.Commands,
			Output:   g.Output,
		}, es, input)
	default:
		host = platform.NewWebHost(platform.WebHostConfig{
			Listen:       config.Host.Listen,
			ShareTimeout: config.Host.ShareTimeout.Duration,
		}, es, input)
	}

	ctx, cancel := context.WithCancel(context.Background())

	g.SystemManager = sm
	g.Events = es
	g.Input = input
	g.Host = host
	g.Context = ctx

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		events:        es,
		input:         input,
		host:          host,
		systemManager: sm,
		clock:         core.NewClock(),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing

	// Engine listeners go first so the game always sees the updated scene.
	e.register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.register(core.EVENT_CODE_SCENE_LOADED, e.onSceneLoaded)
	e.register(core.EVENT_CODE_PART_HOVERED, e.onHover)
	e.register(core.EVENT_CODE_PART_UNHOVERED, e.onHover)
	e.register(core.EVENT_CODE_RESET, e.onReset)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) register(code core.EventCode, fn core.FnOnEvent) {
	id := e.events.Register(code, fn)
	if id == 0 {
		core.LogError("failed to register listener for event `%d`", code)
		return
	}
	e.handlers = append(e.handlers, registration{code: code, id: id})
}

/**
 * @brief Starts the host, loads the model in the background and processes
 * events until Shutdown is called or the application quits.
 */
func (e *Engine) Run() error {
	defer close(e.done)
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()

	if err := e.host.Startup(e.ctx); err != nil {
		return err
	}
	if err := e.systemManager.MeshLoaderSystem.Load(e.ctx, e.config.Model.Source); err != nil {
		return err
	}

	e.events.ProcessEvents(e.ctx)

	e.clock.Update()
	core.LogInfo("Engine stopped after %s.", e.clock.Elapsed().Round(time.Millisecond))
	return nil
}

// Stage returns the current lifecycle stage.
func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		running := e.currentStage == EngineStageRunning
		e.currentStage = EngineStageShuttingDown
		e.cancel()
		if running {
			<-e.done
		}
		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				core.LogError(err.Error())
			}
		}
		for _, h := range e.handlers {
			e.events.Unregister(h.code, h.id)
		}
		if err := e.host.Shutdown(); err != nil {
			e.shutdownErr = err
			return
		}
		if err := e.systemManager.Shutdown(); err != nil {
			e.shutdownErr = err
			return
		}
		if err := e.events.Shutdown(); err != nil {
			e.shutdownErr = err
			return
		}
	})
	return e.shutdownErr
}

func (e *Engine) bindScene(scene *metadata.Scene) {
	sm := e.systemManager
	sm.PickSystem.Reset()
	sm.SceneBinder.Bind(scene)

	if pub, ok := e.host.(platform.StatePublisher); ok {
		if data, ok := sm.MeshLoaderSystem.Cached(scene.Source); ok {
			pub.PublishModel(scene.Name, data)
		}
	}
	if e.gameInstance.FnOnSceneLoaded != nil {
		if err := e.gameInstance.FnOnSceneLoaded(scene); err != nil {
			core.LogError(err.Error())
		}
	}
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.cancel()
		return true
	}
	return false
}

func (e *Engine) onSceneLoaded(context core.EventContext) bool {
	ev, ok := context.Data.(*systems.SceneLoadedEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return true
	}
	if ev.Err != nil {
		core.LogError("Model '%s' could not be loaded: %s", ev.Source, ev.Err.Error())
		return false
	}
	e.bindScene(ev.Scene)
	return false
}

func (e *Engine) onHover(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_PART_UNHOVERED {
		e.systemManager.SceneBinder.SetHovered("")
		return false
	}
	pe, ok := context.Data.(*core.PartEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return true
	}
	e.systemManager.SceneBinder.SetHovered(pe.MeshID)
	return false
}

// onReset rebuilds the scene from the cached model, dropping every override
// and the highlight. The game resets its own state afterwards. A failed
// rebuild leaves everything as it was and stops the reset.
func (e *Engine) onReset(context core.EventContext) bool {
	sm := e.systemManager
	scene, err := sm.MeshLoaderSystem.Reload(e.ctx, e.config.Model.Source)
	if err != nil {
		core.LogError("Reset could not reload the model: %s", err.Error())
		return true
	}

	sm.SceneBinder.SetHovered("")
	sm.SceneBinder.SetOverrides(metadata.OverrideMap{})
	e.bindScene(scene)
	return false
}
