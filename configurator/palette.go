package configurator

import (
	"github.com/spaghettifunk/configurator/engine/assets/loaders"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// Offered when no palette file is configured.
var defaultPalette = []byte(`
name = "Classic"

[[colours]]
code = "#ff6347"
name = "Tomato"

[[colours]]
code = "#800000"
name = "Maroon"

[[colours]]
code = "#a20000"
name = "Crimson"

[[colours]]
code = "#ffd700"
name = "Gold"

[[colours]]
code = "#2e8b57"
name = "Sea Green"

[[colours]]
code = "#4682b4"
name = "Steel Blue"

[[colours]]
code = "#191970"
name = "Midnight"

[[colours]]
code = "#708090"
name = "Slate"

[[colours]]
code = "#f5f5f5"
name = "White Smoke"

[[colours]]
code = "#222222"
name = "Graphite"
`)

// DefaultPalette returns a fresh copy of the built-in palette.
func DefaultPalette() *metadata.Palette {
	p, err := loaders.DecodePalette(defaultPalette)
	if err != nil {
		panic(err)
	}
	return p
}
