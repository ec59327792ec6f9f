// tinyrender - software 3D renderer for the terminal and PNG files.
// View glTF/GLB models in your terminal, or render them offline.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation
//	M           - Cycle render mode (textured, gouraud, solid, wireframe)
//	T           - Toggle texture on/off
//	X           - Toggle wireframe mode
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay (FPS, filename, poly count, render stats)
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/pipeline"
	"golang.org/x/term"
)

type options struct {
	configPath  string
	writeConfig string
	snapshot    string
	texture     string
	mode        string
	background  string
	logLevel    string
	logFile     string
	outDir      string
	fps         int
	width       int
	height      int
	scale       int
	frames      int
	fov         float64
	distance    float64
	hud         bool
	grid        bool
	repeat      bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&o.writeConfig, "write-config", "", "Write the effective config to this path and exit")
	fs.StringVar(&o.snapshot, "snapshot", "", "Render one frame to this PNG file instead of the viewer")
	fs.StringVar(&o.texture, "texture", "", "Path to texture image (PNG/JPG/BMP/TIFF/WebP)")
	fs.StringVar(&o.mode, "mode", "", "Render mode: textured, gouraud, solid, wireframe")
	fs.StringVar(&o.background, "bg", "", "Background color (R,G,B)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&o.logFile, "log-file", "", "Write logs to this file")
	fs.StringVar(&o.outDir, "out", "", "Turntable output directory")
	fs.IntVar(&o.fps, "fps", 0, "Target FPS")
	fs.IntVar(&o.width, "width", 0, "Output width in pixels")
	fs.IntVar(&o.height, "height", 0, "Output height in pixels")
	fs.IntVar(&o.scale, "scale", 0, "Output PNG upscale factor")
	fs.IntVar(&o.frames, "frames", 0, "Render a turntable of this many frames")
	fs.Float64Var(&o.fov, "fov", 0, "Vertical field of view in degrees")
	fs.Float64Var(&o.distance, "distance", 0, "Camera distance")
	fs.BoolVar(&o.hud, "hud", false, "Show the HUD overlay at start")
	fs.BoolVar(&o.grid, "grid", false, "Draw a floor grid")
	fs.BoolVar(&o.repeat, "repeat", false, "Repeat textures instead of clamping")
}

// apply copies every flag that was set on the command line into cfg.
func (o *options) apply(fs *flag.FlagSet, cfg *config.Config) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "texture":
			cfg.Render.Texture = o.texture
		case "mode":
			cfg.Render.Mode = config.Mode(o.mode)
		case "bg":
			bg, perr := parseRGB(o.background)
			if perr != nil {
				err = perr
			}
			cfg.Viewer.Background = bg
		case "log-level":
			cfg.LogLevel = o.logLevel
		case "log-file":
			cfg.LogFile = o.logFile
		case "out":
			cfg.Output.Dir = o.outDir
		case "fps":
			cfg.Viewer.FPS = o.fps
		case "width":
			cfg.Output.Width = o.width
		case "height":
			cfg.Output.Height = o.height
		case "scale":
			cfg.Output.Scale = o.scale
		case "frames":
			cfg.Output.Frames = o.frames
		case "fov":
			cfg.Render.FOV = o.fov
		case "distance":
			cfg.Viewer.Distance = o.distance
		case "hud":
			cfg.Viewer.ShowHUD = o.hud
		case "grid":
			cfg.Render.Grid = o.grid
		case "repeat":
			cfg.Render.Repeat = o.repeat
		}
	})
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// parseRGB parses "R,G,B" with components in 0-255.
func parseRGB(s string) ([3]uint8, error) {
	var r, g, b int
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil || n != 3 {
		return [3]uint8{}, fmt.Errorf("%w: color %q is not R,G,B", config.ErrInvalid, s)
	}
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return [3]uint8{}, fmt.Errorf("%w: color component %d out of range", config.ErrInvalid, c)
		}
	}
	return [3]uint8{uint8(r), uint8(g), uint8(b)}, nil
}

// setupLogging installs the process logger, used by the pipeline too.
// The viewer owns the terminal, so without a log file it logs nowhere.
func setupLogging(cfg config.Config, interactive bool) (io.Closer, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	case interactive:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	pipeline.SetLogger(logger)
	return closer, nil
}

func main() {
	fs := flag.CommandLine
	var opts options
	opts.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "tinyrender - software 3D renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tinyrender [options] [model.gltf|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a cube is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate model\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  M           - Cycle render mode\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(fs, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(fs *flag.FlagSet, opts *options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if err := opts.apply(fs, &cfg); err != nil {
		return err
	}

	if opts.writeConfig != "" {
		return config.Save(opts.writeConfig, cfg)
	}

	turntable := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "frames" || f.Name == "out" {
			turntable = true
		}
	})
	interactive := opts.snapshot == "" && !turntable
	if interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use -snapshot or -frames")
	}

	closer, err := setupLogging(cfg, interactive)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	s, err := loadScene(fs.Arg(0), cfg.Render)
	if err != nil {
		return err
	}
	slog.Info("loaded model", "name", s.name, "vertices", s.mesh.VertexCount(),
		"triangles", s.mesh.TriangleCount(), "materials", len(s.batches))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.snapshot != "":
		return renderSnapshot(cfg, s, opts.snapshot)
	case turntable:
		return renderTurntable(ctx, cfg, s, term.IsTerminal(int(os.Stderr.Fd())))
	default:
		return runViewer(ctx, cfg, s)
	}
}
