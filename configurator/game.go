package configurator

import (
	"fmt"

	"github.com/spaghettifunk/configurator/engine"
	"github.com/spaghettifunk/configurator/engine/assets"
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

type Configurator struct {
	*engine.Game
}

type registration struct {
	code core.EventCode
	id   uint64
}

type gameState struct {
	panel    *Panel
	palette  *metadata.Palette
	handlers []registration
}

func NewConfigurator(config *engine.ApplicationConfig) *Configurator {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	c := &Configurator{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	c.FnBoot = c.Boot
	c.FnInitialize = c.Initialize
	c.FnOnSceneLoaded = c.OnSceneLoaded
	c.FnShutdown = c.Shutdown

	return c
}

func (c *Configurator) state() *gameState {
	return c.State.(*gameState)
}

// Panel returns the panel, available after Initialize.
func (c *Configurator) Panel() *Panel {
	return c.state().panel
}

// Boot loads the palette and starts watching its file.
func (c *Configurator) Boot() error {
	core.LogInfo("booting %s...", c.ApplicationConfig.Name)

	config := c.ApplicationConfig.Palette
	if config.Path == "" {
		c.state().palette = DefaultPalette()
		return nil
	}

	am := c.SystemManager.AssetManager
	res, err := am.LoadAsset(c.Context, config.Path, metadata.ResourceTypePalette, nil)
	if err != nil {
		core.LogError("failed to load palette '%s'", config.Path)
		return err
	}
	palette, ok := res.Data.(*metadata.Palette)
	if !ok {
		return fmt.Errorf("palette %s: unexpected resource data %T", config.Path, res.Data)
	}
	c.state().palette = palette

	if config.Watch {
		if err := am.Watch(config.Path); err != nil {
			core.LogWarn("palette '%s' will not be reloaded: %s", config.Path, err.Error())
		}
	}
	return nil
}

func (c *Configurator) Initialize() error {
	core.LogDebug("Configurator Initialize fn....")

	if c.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}

	state := c.state()
	config := c.ApplicationConfig

	share := platform.SharePayload{
		Title: config.Share.Title,
		Text:  config.Share.Text,
		URL:   config.Share.URL,
	}
	// An empty URL lets the viewer share the page it is showing.

	panel, err := NewPanel(PanelConfig{
		DefaultColour: config.Panel.DefaultColour,
		Share:         share,
	}, c.Host, c.SystemManager.SceneBinder)
	if err != nil {
		return err
	}
	panel.SetPalette(state.palette)
	state.panel = panel

	c.register(core.EVENT_CODE_PART_SELECTED, c.onPartSelected)
	c.register(core.EVENT_CODE_COLOUR_CHANGED, c.onColourChanged)
	c.register(core.EVENT_CODE_APPLY_CHANGES, c.onApplyChanges)
	c.register(core.EVENT_CODE_PRINT, c.onPrint)
	c.register(core.EVENT_CODE_SHARE, c.onShare)
	c.register(core.EVENT_CODE_RESET, c.onReset)
	c.register(core.EVENT_CODE_PALETTE_RELOADED, c.onPaletteReloaded)
	c.register(core.EVENT_CODE_PART_HOVERED, c.onHover)
	c.register(core.EVENT_CODE_PART_UNHOVERED, c.onHover)

	return nil
}

func (c *Configurator) register(code core.EventCode, fn core.FnOnEvent) {
	id := c.Events.Register(code, fn)
	if id == 0 {
		core.LogError("failed to register listener for event `%d`", code)
		return
	}
	c.state().handlers = append(c.state().handlers, registration{code: code, id: id})
}

func (c *Configurator) OnSceneLoaded(scene *metadata.Scene) error {
	core.LogInfo("Scene '%s' ready with %d parts.", scene.Name, len(scene.Meshes()))
	c.publish()
	return nil
}

func (c *Configurator) Shutdown() error {
	state := c.state()
	for _, h := range state.handlers {
		c.Events.Unregister(h.code, h.id)
	}
	state.handlers = nil
	core.LogInfo("shutting down %s", c.ApplicationConfig.Name)
	return nil
}

// publish sends the current panel and material state to the host.
func (c *Configurator) publish() {
	pub, ok := c.Host.(platform.StatePublisher)
	if !ok {
		return
	}
	pub.PublishState(c.Snapshot())
}

// Snapshot assembles the state presented by the viewer.
func (c *Configurator) Snapshot() platform.State {
	binder := c.SystemManager.SceneBinder
	state := platform.State{
		Name:    c.ApplicationConfig.Name,
		Meshes:  binder.Snapshot(),
		Hovered: binder.Hovered(),
	}
	if scene := binder.Scene(); scene != nil {
		state.Scene = scene.Name
	}
	if panel := c.state().panel; panel != nil {
		state.Selected = panel.Selected()
		state.PendingColour = panel.Pending()
		state.Overrides = panel.Overrides()
		state.Palette = panel.Palette()
	}
	return state
}

func (c *Configurator) onPartSelected(context core.EventContext) bool {
	pe, ok := context.Data.(*core.PartEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return true
	}
	c.state().panel.Select(pe.MeshID, pe.MaterialName)
	core.LogDebug("Selected part '%s' (%s).", pe.MeshID, pe.MaterialName)
	c.publish()
	return true
}

func (c *Configurator) onColourChanged(context core.EventContext) bool {
	ce, ok := context.Data.(*core.ColourEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return true
	}
	panel := c.state().panel
	var err error
	if ce.Swatch {
		err = panel.SelectSwatch(ce.Value)
	} else {
		err = panel.SetColour(ce.Value)
	}
	if err != nil {
		core.LogWarn(err.Error())
	}
	c.publish()
	return true
}

func (c *Configurator) onApplyChanges(context core.EventContext) bool {
	panel := c.state().panel
	if panel.Selected() == nil {
		core.LogDebug("Apply ignored: %s.", core.ErrNoSelection)
		return true
	}
	if panel.ApplyChanges() {
		c.SystemManager.SceneBinder.SetOverrides(panel.Overrides())
	}
	c.publish()
	return true
}

func (c *Configurator) onPrint(context core.EventContext) bool {
	if err := c.state().panel.Print(c.Context); err != nil {
		core.LogError("Error printing: %s", err.Error())
	}
	return true
}

func (c *Configurator) onShare(context core.EventContext) bool {
	// Sharing waits on the viewer, so it must not hold up the event loop.
	go c.state().panel.Share(c.Context)
	return true
}

func (c *Configurator) onReset(context core.EventContext) bool {
	if err := c.state().panel.Reset(c.Context); err != nil {
		core.LogError("Error resetting: %s", err.Error())
	}
	c.publish()
	return true
}

func (c *Configurator) onPaletteReloaded(context core.EventContext) bool {
	pe, ok := context.Data.(*assets.PaletteEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return true
	}
	c.state().palette = pe.Palette
	c.state().panel.SetPalette(pe.Palette)
	core.LogInfo("Palette '%s' reloaded with %d colours.", pe.Palette.Name, len(pe.Palette.Entries))
	c.publish()
	return true
}

func (c *Configurator) onHover(context core.EventContext) bool {
	c.publish()
	return false
}
