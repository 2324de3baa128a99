package loaders

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// PaletteLoader decodes a TOML palette:
//
//	name = "Facade"
//	[[colours]]
//	code = "#ff6347"
//	name = "Tomato"
type PaletteLoader struct {
	BinaryLoader
}

func (pl *PaletteLoader) Load(ctx context.Context, path string, params interface{}) (*metadata.Resource, error) {
	data, err := pl.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	palette, err := DecodePalette(data)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	if palette.Name == "" {
		palette.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypePalette,
		Name:     palette.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		RawData:  data,
		Data:     palette,
	}, nil
}

// DecodePalette parses and validates palette TOML. Codes are normalized to
// lower-case "#rrggbb".
func DecodePalette(data []byte) (*metadata.Palette, error) {
	palette := &metadata.Palette{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(palette); err != nil {
		return nil, err
	}
	if len(palette.Entries) == 0 {
		return nil, fmt.Errorf("no colours defined")
	}
	for i := range palette.Entries {
		code, err := metadata.NormalizeHex(palette.Entries[i].Code)
		if err != nil {
			return nil, fmt.Errorf("colour %d: %w", i, err)
		}
		palette.Entries[i].Code = code
		if palette.Entries[i].Name == "" {
			palette.Entries[i].Name = code
		}
	}
	return palette, nil
}

func (pl *PaletteLoader) Unload(*metadata.Resource) error {
	return nil
}
