package main

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/pipeline"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]uint8
		wantErr bool
	}{
		{"30,30,40", [3]uint8{30, 30, 40}, false},
		{"0,255,7", [3]uint8{0, 255, 7}, false},
		{"1,2", [3]uint8{}, true},
		{"red", [3]uint8{}, true},
		{"0,256,0", [3]uint8{}, true},
		{"-1,0,0", [3]uint8{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseRGB(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseRGB(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, config.ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if got != tc.want {
				t.Errorf("parseRGB(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func parseFlags(t *testing.T, args ...string) (*flag.FlagSet, *options) {
	t.Helper()
	fs := flag.NewFlagSet("tinyrender", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts options
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs, &opts
}

func TestFlagsOverrideConfig(t *testing.T) {
	fs, opts := parseFlags(t, "-mode", "solid", "-bg", "1,2,3", "-fps", "24", "-grid", "-scale", "3", "model.glb")

	cfg := config.Default()
	cfg.Output.Width = 99
	if err := opts.apply(fs, &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Render.Mode != config.ModeSolid || cfg.Viewer.Background != [3]uint8{1, 2, 3} {
		t.Errorf("mode %q, background %v", cfg.Render.Mode, cfg.Viewer.Background)
	}
	if cfg.Viewer.FPS != 24 || !cfg.Render.Grid || cfg.Output.Scale != 3 {
		t.Errorf("fps %d, grid %v, scale %d", cfg.Viewer.FPS, cfg.Render.Grid, cfg.Output.Scale)
	}
	// Flags left unset do not clobber config values.
	if cfg.Output.Width != 99 || cfg.Render.FOV != 60 {
		t.Errorf("unset flags changed the config: width %d, fov %g", cfg.Output.Width, cfg.Render.FOV)
	}
	if fs.Arg(0) != "model.glb" {
		t.Errorf("model argument = %q", fs.Arg(0))
	}
}

func TestFlagsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"-mode", "raytraced"},
		{"-bg", "nope"},
		{"-fps", "0"},
		{"-log-level", "loud"},
	} {
		fs, opts := parseFlags(t, args...)
		cfg := config.Default()
		if err := opts.apply(fs, &cfg); !errors.Is(err, config.ErrInvalid) {
			t.Errorf("%v: apply() = %v, want ErrInvalid", args, err)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		pipeline.SetLogger(nil)
	})

	cfg := config.Default()
	closer, err := setupLogging(cfg, true)
	if err != nil || closer != nil {
		t.Fatalf("interactive without a log file: closer %v, err %v", closer, err)
	}

	cfg.LogFile = filepath.Join(t.TempDir(), "tinyrender.log")
	cfg.LogLevel = "debug"
	closer, err = setupLogging(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	slog.Debug("hello from the test")
	pipeline.Logger().Debug("hello from the pipeline")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"hello from the test", "hello from the pipeline", "level=DEBUG"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
}
