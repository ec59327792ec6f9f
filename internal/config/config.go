// Package config holds the viewer and batch renderer settings, read from
// and written to YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Mode selects how meshes are drawn.
type Mode string

const (
	ModeTextured  Mode = "textured"  // Gouraud shading with the material texture
	ModeGouraud   Mode = "gouraud"   // per-vertex lighting, no texture
	ModeSolid     Mode = "solid"     // flat base colour, unlit
	ModeWireframe Mode = "wireframe" // edges only
)

// Modes lists every Mode in cycling order.
var Modes = []Mode{ModeTextured, ModeGouraud, ModeSolid, ModeWireframe}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete set of options.
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`

	Viewer ViewerConfig `yaml:"viewer"`
	Render RenderConfig `yaml:"render"`
	Light  LightConfig  `yaml:"light"`
	Output OutputConfig `yaml:"output"`
}

// ViewerConfig controls the interactive terminal viewer.
type ViewerConfig struct {
	FPS        int      `yaml:"fps"`
	Background [3]uint8 `yaml:"background,flow"`
	ShowHUD    bool     `yaml:"show_hud"`
	Distance   float64  `yaml:"distance"` // camera distance from the model centre
}

// RenderConfig controls the drawing of every frame.
type RenderConfig struct {
	Mode           Mode     `yaml:"mode"`
	FOV            float64  `yaml:"fov"` // vertical field of view, degrees
	Color          [3]uint8 `yaml:"color,flow"`
	Texture        string   `yaml:"texture,omitempty"`
	MaxTextureSize int      `yaml:"max_texture_size"` // 0 keeps textures at full size
	Repeat         bool     `yaml:"repeat"`           // wrap UVs instead of clamping
	AlphaCutoff    float64  `yaml:"alpha_cutoff"`
	Grid           bool     `yaml:"grid"`
}

// LightConfig places the directional light.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction,flow"`
	Ambient   float64    `yaml:"ambient"`
}

// OutputConfig controls snapshot and turntable rendering.
type OutputConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Scale  int    `yaml:"scale"` // nearest-neighbour upscale of written PNGs
	Frames int    `yaml:"frames"`
	Dir    string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Viewer: ViewerConfig{
			FPS:        60,
			Background: [3]uint8{30, 30, 40},
			Distance:   5,
		},
		Render: RenderConfig{
			Mode:           ModeTextured,
			FOV:            60,
			Color:          [3]uint8{200, 200, 200},
			MaxTextureSize: 512,
			AlphaCutoff:    0.5,
		},
		Light: LightConfig{
			Direction: [3]float64{0.5, 1, 0.3},
			Ambient:   0.3,
		},
		Output: OutputConfig{
			Width:  320,
			Height: 240,
			Scale:  1,
			Frames: 36,
			Dir:    "frames",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	return nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if !c.Render.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Render.Mode)
	}

	switch {
	case c.Viewer.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.Viewer.FPS)
	case c.Viewer.Distance <= 0:
		return fmt.Errorf("%w: distance must be positive, got %g", ErrInvalid, c.Viewer.Distance)
	case c.Render.FOV <= 0 || c.Render.FOV >= 180:
		return fmt.Errorf("%w: fov must be in (0, 180), got %g", ErrInvalid, c.Render.FOV)
	case c.Render.MaxTextureSize < 0:
		return fmt.Errorf("%w: negative max_texture_size", ErrInvalid)
	case c.Render.AlphaCutoff < 0 || c.Render.AlphaCutoff > 1:
		return fmt.Errorf("%w: alpha_cutoff must be in [0, 1], got %g", ErrInvalid, c.Render.AlphaCutoff)
	case c.Light.Ambient < 0 || c.Light.Ambient > 1:
		return fmt.Errorf("%w: ambient must be in [0, 1], got %g", ErrInvalid, c.Light.Ambient)
	case c.Output.Width <= 0 || c.Output.Height <= 0:
		return fmt.Errorf("%w: output size %dx%d", ErrInvalid, c.Output.Width, c.Output.Height)
	case c.Output.Scale < 1:
		return fmt.Errorf("%w: scale must be at least 1, got %d", ErrInvalid, c.Output.Scale)
	case c.Output.Frames < 0:
		return fmt.Errorf("%w: negative frame count", ErrInvalid)
	}

	d := c.Light.Direction
	n := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: light direction %v", ErrInvalid, d)
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return l, nil
}

// Valid reports whether m is one of Modes.
func (m Mode) Valid() bool {
	return slices.Contains(Modes, m)
}

// Next returns the mode after m in Modes, wrapping around.
func (m Mode) Next() Mode {
	i := slices.Index(Modes, m)
	return Modes[(i+1)%len(Modes)]
}
