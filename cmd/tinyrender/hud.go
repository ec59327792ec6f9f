package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/pipeline"
)

// ViewState is the interactive viewer's UI state.
type ViewState struct {
	Mode           config.Mode
	TextureEnabled bool
	LightMode      bool        // the mouse is aiming the light
	LightDir       math3d.Vec3 // current light direction
	PendingLight   math3d.Vec3 // light direction while aiming
	ShowHUD        bool
	Spinning       bool // the model still carries momentum
}

func NewViewState(cfg config.Config) *ViewState {
	d := cfg.Light.Direction
	return &ViewState{
		Mode:           cfg.Render.Mode,
		TextureEnabled: true,
		LightDir:       math3d.V3(d[0], d[1], d[2]).Normalize(),
		ShowHUD:        cfg.Viewer.ShowHUD,
	}
}

// Light returns the direction to shade with this frame.
func (v *ViewState) Light() math3d.Vec3 {
	if v.LightMode {
		return v.PendingLight
	}
	return v.LightDir
}

// ScreenToLightDir maps a terminal cell to a direction on the hemisphere
// facing the viewer.
func (v *ViewState) ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)
	return math3d.V3(nx, -ny, nz).Normalize()
}

// HUD is the text overlay drawn over the top and bottom terminal rows.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	stats     pipeline.Stats
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// Update counts a frame and records its render statistics.
func (h *HUD) Update(stats pipeline.Stats) {
	h.stats = stats
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render writes the overlay to w as ANSI escape sequences. Both HUD rows
// are cleared first so hiding the overlay takes effect.
func (h *HUD) Render(w io.Writer, width, height int, view *ViewState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Fprint(w, moveTo(1, 1)+clearLine)
	fmt.Fprint(w, moveTo(height, 1)+clearLine)

	if view.LightMode {
		msg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - move the mouse to aim, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		fmt.Fprint(w, moveTo(height, max((width-66)/2, 1))+msg)
		return
	}
	if !view.ShowHUD {
		return
	}

	fmt.Fprintf(w, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	fmt.Fprint(w, moveTo(1, max((width-len(h.filename)-2)/2, 1))+title)

	polys := fmt.Sprintf("%d polys", h.polyCount)
	fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(1, max(width-len(polys)-1, 1)), bgBlack, fgCyan, bold, polys, reset)

	tex := "[ ]"
	if view.TextureEnabled && view.Mode == config.ModeTextured {
		tex = "[✓]"
	}
	spin := ""
	if view.Spinning {
		spin = " ↻"
	}
	fmt.Fprintf(w, "%s%s%s %s Texture  mode: %-9s%s %s", moveTo(height, 1), bgBlack, fgWhite, tex, view.Mode, spin, reset)

	s := h.stats
	counts := fmt.Sprintf("px %d  z-rej %d  cut %d  skip %d", s.Written, s.DepthRejected, s.Discarded, s.Skipped)
	fmt.Fprintf(w, "%s%s%s %s %s", moveTo(height, max(width-len(counts)-1, 1)), bgBlack, dim, counts, reset)
}
