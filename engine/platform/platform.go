package platform

import (
	"context"
	"time"

	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// ShareOutcome is the result of a share request that did not fail.
type ShareOutcome int

const (
	ShareCompleted ShareOutcome = iota
	// The host cannot share; it has already told the user so.
	ShareUnsupported
)

func (so ShareOutcome) String() string {
	switch so {
	case ShareCompleted:
		return "completed"
	case ShareUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// SharePayload is handed to the native share sheet.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// PrintPart is one customised part listed on a printed page.
type PrintPart struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Key    string `json:"key"`
	Colour string `json:"colour"`
}

// PrintDocument describes the page to print.
type PrintDocument struct {
	Title   string      `json:"title"`
	Scene   string      `json:"scene"`
	URL     string      `json:"url"`
	Parts   []PrintPart `json:"parts"`
	Created time.Time   `json:"created"`
}

// State is everything a viewer needs to present the configurator.
type State struct {
	Name          string                  `json:"name"`
	Scene         string                  `json:"scene"`
	Meshes        []metadata.MeshState    `json:"meshes"`
	Selected      *metadata.PartSelection `json:"selected,omitempty"`
	PendingColour string                  `json:"pendingColour"`
	Overrides     metadata.OverrideMap    `json:"overrides"`
	Hovered       string                  `json:"hovered,omitempty"`
	Palette       *metadata.Palette       `json:"palette,omitempty"`
}

/**
 * @brief The environment the configurator runs in. Print, Share and Reset are
 * the page-level actions; Startup and Shutdown bound the host's own lifetime.
 */
type Host interface {
	Startup(ctx context.Context) error
	Shutdown() error

	Print(ctx context.Context, doc PrintDocument) error
	Share(ctx context.Context, payload SharePayload) (ShareOutcome, error)
	Reset(ctx context.Context) error
}

// StatePublisher is implemented by hosts that present the state themselves.
type StatePublisher interface {
	PublishState(state State)
	PublishModel(name string, data []byte)
}
