package configurator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/spaghettifunk/configurator/engine/systems"
)

// DefaultColour seeds the pending colour of a part without override.
const DefaultColour = "#ff6347"

type PanelConfig struct {
	DefaultColour string
	Share         platform.SharePayload
}

// Panel holds the UI state of the configurator. It is only touched from the
// event loop.
type Panel struct {
	config PanelConfig
	host   platform.Host
	parts  systems.SceneSource

	palette   *metadata.Palette
	selected  *metadata.PartSelection
	pending   string
	overrides metadata.OverrideMap
}

func NewPanel(config PanelConfig, host platform.Host, parts systems.SceneSource) (*Panel, error) {
	if config.DefaultColour == "" {
		config.DefaultColour = DefaultColour
	}
	def, err := metadata.NormalizeHex(config.DefaultColour)
	if err != nil {
		return nil, fmt.Errorf("panel default colour: %w", core.ErrInvalidColour)
	}
	config.DefaultColour = def
	if host == nil {
		return nil, fmt.Errorf("func NewPanel - a host is required")
	}
	return &Panel{
		config:    config,
		host:      host,
		parts:     parts,
		pending:   def,
		overrides: metadata.OverrideMap{},
	}, nil
}

/**
 * @brief Replaces the selection with the given part. The pending colour is
 * seeded from the part's override, or the default colour.
 *
 * @param partID The mesh id of the clicked part.
 * @param materialName The name of the part's material.
 */
func (p *Panel) Select(partID, materialName string) {
	p.selected = &metadata.PartSelection{ID: partID, Name: materialName}
	if o, ok := p.overrides[partID]; ok {
		p.pending = o.Colour
		return
	}
	p.pending = p.config.DefaultColour
}

// SetColour updates the pending colour. Malformed values leave it unchanged.
func (p *Panel) SetColour(value string) error {
	hex, err := metadata.NormalizeHex(value)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), core.ErrInvalidColour)
	}
	p.pending = hex
	return nil
}

// SelectSwatch sets the pending colour to the palette entry with the given code.
func (p *Panel) SelectSwatch(code string) error {
	entry, ok := p.palette.Lookup(code)
	if !ok {
		return fmt.Errorf("%q: %w", code, core.ErrUnknownSwatch)
	}
	return p.SetColour(entry.Code)
}

/**
 * @brief Commits the pending colour for the selected part, replacing any
 * previous override of that part.
 *
 * @returns true when the override map changed; false with nothing selected or
 * when the part already had the pending colour.
 */
func (p *Panel) ApplyChanges() bool {
	if p.selected == nil {
		return false
	}
	next := metadata.Override{Colour: p.pending}
	if cur, ok := p.overrides[p.selected.ID]; ok && cur == next {
		return false
	}
	p.overrides[p.selected.ID] = next
	return true
}

// Overrides returns a copy of the override map.
func (p *Panel) Overrides() metadata.OverrideMap {
	return p.overrides.Clone()
}

func (p *Panel) Selected() *metadata.PartSelection {
	if p.selected == nil {
		return nil
	}
	s := *p.selected
	return &s
}

func (p *Panel) Pending() string {
	return p.pending
}

func (p *Panel) Palette() *metadata.Palette {
	return p.palette
}

func (p *Panel) SetPalette(palette *metadata.Palette) {
	p.palette = palette
}

// Print sends a page listing every customised part to the host.
func (p *Panel) Print(ctx context.Context) error {
	doc, err := p.document()
	if err != nil {
		return err
	}
	return p.host.Print(ctx, doc)
}

func (p *Panel) document() (platform.PrintDocument, error) {
	if p.parts == nil || p.parts.Scene() == nil {
		return platform.PrintDocument{}, core.ErrNoScene
	}
	doc := platform.PrintDocument{
		Title:   p.config.Share.Title,
		Scene:   p.parts.Scene().Name,
		URL:     p.config.Share.URL,
		Created: time.Now(),
	}
	for id, o := range p.overrides {
		part := platform.PrintPart{ID: id, Colour: o.Colour}
		if m, ok := p.parts.Mesh(id); ok {
			part.Name = m.MaterialName()
			if part.Name == "" {
				part.Name = m.Name
			}
			part.Key = m.Key
		}
		doc.Parts = append(doc.Parts, part)
	}
	sort.Slice(doc.Parts, func(i, j int) bool {
		if doc.Parts[i].Key != doc.Parts[j].Key {
			return doc.Parts[i].Key < doc.Parts[j].Key
		}
		return doc.Parts[i].ID < doc.Parts[j].ID
	})
	return doc, nil
}

/**
 * @brief Asks the host to share the page. Unsupported hosts alert the user
 * themselves; a failed share is logged and otherwise ignored.
 */
func (p *Panel) Share(ctx context.Context) {
	outcome, err := p.host.Share(ctx, p.config.Share)
	if err != nil {
		core.LogError("Error sharing: %s", err.Error())
		return
	}
	core.LogDebug("Share finished: %s.", outcome)
}

// Reset drops overrides, selection and pending colour, then resets the host.
func (p *Panel) Reset(ctx context.Context) error {
	p.selected = nil
	p.pending = p.config.DefaultColour
	p.overrides = metadata.OverrideMap{}
	return p.host.Reset(ctx)
}
