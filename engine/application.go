package engine

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

const (
	HostKindWeb      = "web"
	HostKindHeadless = "headless"
)

// Duration reads TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ModelConfig struct {
	// Local path or http(s) URL of a glTF/GLB model.
	Source string `toml:"source"`
}

type PaletteConfig struct {
	// TOML palette file; empty uses the built-in palette.
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

type MaterialConfig struct {
	Roughness float32 `toml:"roughness"`
	Metalness float32 `toml:"metalness"`
}

type HighlightConfig struct {
	Colour    string  `toml:"colour"`
	Intensity float32 `toml:"intensity"`
}

type PanelConfig struct {
	DefaultColour string `toml:"default_colour"`
}

type ShareConfig struct {
	Title string `toml:"title"`
	Text  string `toml:"text"`
	URL   string `toml:"url"`
}

type HostConfig struct {
	Kind         string   `toml:"kind"`
	Listen       string   `toml:"listen"`
	PrintDir     string   `toml:"print_dir"`
	ShareTimeout Duration `toml:"share_timeout"`
}

type JobsConfig struct {
	Workers int `toml:"workers"`
	Queue   int `toml:"queue"`
}

type ApplicationConfig struct {
	// The application name shown by the viewer.
	Name      string          `toml:"name"`
	LogLevel  string          `toml:"log_level"`
	Model     ModelConfig     `toml:"model"`
	Palette   PaletteConfig   `toml:"palette"`
	Material  MaterialConfig  `toml:"material"`
	Highlight HighlightConfig `toml:"highlight"`
	Panel     PanelConfig     `toml:"panel"`
	Share     ShareConfig     `toml:"share"`
	Host      HostConfig      `toml:"host"`
	Jobs      JobsConfig      `toml:"jobs"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:     "Product Configurator",
		LogLevel: "info",
		Palette: PaletteConfig{
			Watch: true,
		},
		Material: MaterialConfig{
			Roughness: 0.5,
			Metalness: 0.5,
		},
		Highlight: HighlightConfig{
			Colour:    "#aaaaaa",
			Intensity: 0.5,
		},
		Panel: PanelConfig{
			DefaultColour: "#ff6347",
		},
		Share: ShareConfig{
			Title: "Interactive Page",
			Text:  "Check out this amazing page!",
		},
		Host: HostConfig{
			Kind:         HostKindWeb,
			Listen:       ":8080",
			PrintDir:     "prints",
			ShareTimeout: Duration{30 * time.Second},
		},
		Jobs: JobsConfig{
			Workers: 2,
			Queue:   16,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are an error.
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return config, nil
}

func (ac *ApplicationConfig) Validate() error {
	if ac.Model.Source == "" {
		return fmt.Errorf("model.source is required")
	}
	if ac.Material.Roughness < 0 || ac.Material.Roughness > 1 {
		return fmt.Errorf("material.roughness must be in [0, 1]")
	}
	if ac.Material.Metalness < 0 || ac.Material.Metalness > 1 {
		return fmt.Errorf("material.metalness must be in [0, 1]")
	}
	if _, err := metadata.ParseColour(ac.Highlight.Colour); err != nil {
		return fmt.Errorf("highlight.colour: %w", core.ErrInvalidColour)
	}
	if ac.Highlight.Intensity <= 0 {
		return fmt.Errorf("highlight.intensity must be positive")
	}
	if _, err := metadata.ParseColour(ac.Panel.DefaultColour); err != nil {
		return fmt.Errorf("panel.default_colour: %w", core.ErrInvalidColour)
	}
	switch ac.Host.Kind {
	case HostKindWeb, HostKindHeadless:
	default:
		return fmt.Errorf("host.kind must be %q or %q, got %q", HostKindWeb, HostKindHeadless, ac.Host.Kind)
	}
	if ac.Host.ShareTimeout.Duration <= 0 {
		return fmt.Errorf("host.share_timeout must be positive")
	}
	if ac.Jobs.Workers < 1 {
		return fmt.Errorf("jobs.workers must be at least 1")
	}
	if ac.Jobs.Queue < 0 {
		return fmt.Errorf("jobs.queue must not be negative")
	}
	return nil
}
