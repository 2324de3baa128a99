package engine

import (
	"context"
	"io"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/spaghettifunk/configurator/engine/systems"
)

// Game is the application driven by the engine. The engine fills in the
// systems, events, input, host and context before calling FnBoot.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Events            *core.EventSystem
	Input             *core.Input
	Host              platform.Host
	Context           context.Context
	State             interface{}
	// Command stream and reply writer of the headless host.
	Commands        io.Reader
	Output          io.Writer
	FnBoot          Boot
	FnInitialize    Initialize
	FnOnSceneLoaded SceneLoaded
	FnShutdown      Shutdown
}

type Boot func() error
type Initialize func() error
type SceneLoaded func(scene *metadata.Scene) error
type Shutdown func() error
