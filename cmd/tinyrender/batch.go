package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// pose tilts the model towards the camera and turns it by yaw, so three
// faces of a box are visible.
func pose(yaw float64) math3d.Mat4 {
	return math3d.RotateX(0.4).Mul(math3d.RotateY(yaw - 0.6))
}

// renderSnapshot renders a single frame and writes it to path as PNG.
func renderSnapshot(cfg config.Config, s *scene, path string) error {
	r := newRenderer(s, cfg.Output.Width, cfg.Output.Height, cfg.Render.FOV, cfg.Viewer.Distance)

	stats, err := r.frame(pose(0), optionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	if err := r.fb.SavePNG(path, cfg.Output.Scale); err != nil {
		return err
	}
	slog.Info("wrote snapshot", "path", path, "width", cfg.Output.Width*cfg.Output.Scale,
		"height", cfg.Output.Height*cfg.Output.Scale, "pixels", stats.Written)
	return nil
}

// renderTurntable writes cfg.Output.Frames PNG frames to cfg.Output.Dir,
// turning the model one full revolution about the vertical axis.
func renderTurntable(ctx context.Context, cfg config.Config, s *scene, progress bool) error {
	n := cfg.Output.Frames
	if n == 0 {
		return nil
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r := newRenderer(s, cfg.Output.Width, cfg.Output.Height, cfg.Render.FOV, cfg.Viewer.Distance)
	opts := optionsFromConfig(cfg)

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(n), "rendering")
		defer bar.Close()
	}

	var total int
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}

		yaw := 2 * math.Pi * float64(i) / float64(n)
		stats, err := r.frame(pose(yaw), opts)
		switch {
		case errors.Is(err, math3d.ErrSingular):
			slog.Warn("skipping frame", "frame", i, "err", err)
			continue
		case err != nil:
			return fmt.Errorf("render frame %d: %w", i, err)
		}

		path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("frame_%04d.png", i))
		if err := r.fb.SavePNG(path, cfg.Output.Scale); err != nil {
			return err
		}
		total += stats.Written
		slog.Debug("wrote frame", "path", path, "pixels", stats.Written, "depth_rejected", stats.DepthRejected)

		if bar != nil {
			bar.Add(1)
		}
	}

	slog.Info("wrote turntable", "dir", cfg.Output.Dir, "frames", n, "pixels", total)
	return nil
}
