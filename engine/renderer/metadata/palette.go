package metadata

// PaletteEntry is one swatch offered by the panel.
type PaletteEntry struct {
	Code string `json:"code" toml:"code"`
	Name string `json:"name" toml:"name"`
}

type Palette struct {
	Name    string         `json:"name" toml:"name"`
	Entries []PaletteEntry `json:"colours" toml:"colours"`
}

// Lookup returns the entry whose code matches code (case-insensitive hex).
func (p *Palette) Lookup(code string) (PaletteEntry, bool) {
	if p == nil {
		return PaletteEntry{}, false
	}
	want, err := NormalizeHex(code)
	if err != nil {
		return PaletteEntry{}, false
	}
	for _, e := range p.Entries {
		if got, err := NormalizeHex(e.Code); err == nil && got == want {
			return e, true
		}
	}
	return PaletteEntry{}, false
}
