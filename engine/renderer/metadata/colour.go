package metadata

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Colour is an sRGB colour with channels in [0, 1], the space hex strings are
// written in.
type Colour = colorful.Color

var (
	ColourBlack = Colour{R: 0, G: 0, B: 0}
	ColourWhite = Colour{R: 1, G: 1, B: 1}
)

// ParseColour parses "#rrggbb" or "#rgb" (case-insensitive).
func ParseColour(hex string) (Colour, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 4) {
		return Colour{}, fmt.Errorf("%q: expected #rrggbb or #rgb", hex)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Colour{}, fmt.Errorf("%q: %w", hex, err)
	}
	return c, nil
}

// MustParseColour is ParseColour for compile-time constants.
func MustParseColour(hex string) Colour {
	c, err := ParseColour(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeHex returns the canonical lower-case "#rrggbb" form of hex.
func NormalizeHex(hex string) (string, error) {
	c, err := ParseColour(hex)
	if err != nil {
		return "", err
	}
	return ColourHex(c), nil
}

// ColourHex formats c as "#rrggbb", clamping out-of-gamut channels.
func ColourHex(c Colour) string {
	return c.Clamped().Hex()
}

// ColourFromFactors builds a colour from model-file channel factors.
func ColourFromFactors(r, g, b float64) Colour {
	return Colour{R: r, G: g, B: b}.Clamped()
}
