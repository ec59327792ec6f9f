package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
)

const (
	torqueStrength = 3.0
	minDistance    = 2.0 // fitted meshes reach sqrt(3) from the origin
	maxDistance    = 20.0
)

// viewer is the interactive terminal front end. All state is owned by the
// render loop; terminal events are drained at the start of every frame.
type viewer struct {
	cfg      config.Config
	scene    *scene
	term     *uv.Terminal
	r        *renderer
	rotation *RotationState
	view     *ViewState
	hud      *HUD

	width, height int // terminal cells
	distance      float64

	torque     struct{ pitch, yaw, roll float64 }
	mouseDown  bool
	lastMouseX int
	lastMouseY int
}

func runViewer(ctx context.Context, cfg config.Config, s *scene) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	fbw, fbh := render.TerminalFramebufferSize(width, height)
	v := &viewer{
		cfg:      cfg,
		scene:    s,
		term:     term,
		r:        newRenderer(s, fbw, fbh, cfg.Render.FOV, cfg.Viewer.Distance),
		rotation: NewRotationState(cfg.Viewer.FPS),
		view:     NewViewState(cfg),
		hud:      NewHUD(s.name, s.mesh.TriangleCount()),
		width:    width,
		height:   height,
		distance: cfg.Viewer.Distance,
	}
	return v.loop(ctx)
}

func (v *viewer) loop(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	targetDuration := time.Second / time.Duration(v.cfg.Viewer.FPS)
	lastFrame := time.Now()
	events := v.term.Events()

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				v.handle(ev, cancel)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		// Key release events are not reported by every terminal, so held
		// keys fade out instead.
		v.rotation.ApplyImpulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
		v.torque.pitch *= 0.9
		v.torque.yaw *= 0.9
		v.torque.roll *= 0.9
		v.rotation.Update()
		v.view.Spinning = v.rotation.Spinning()

		opts := optionsFromConfig(v.cfg)
		opts.Mode = v.view.Mode
		opts.Textures = v.view.TextureEnabled
		opts.Light = v.view.Light()

		stats, err := v.r.frame(v.rotation.Matrix(), opts)
		switch {
		case errors.Is(err, math3d.ErrSingular):
			slog.Warn("skipping frame", "err", err)
		case err != nil:
			return err
		default:
			v.r.fb.Draw(v.term, v.term.Bounds())
			if err := v.term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			v.hud.Update(stats)
			v.hud.Render(os.Stdout, v.width, v.height, v.view)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func (v *viewer) zoom(delta float64) {
	v.distance = max(minDistance, min(maxDistance, v.distance+delta))
	v.r.cam.SetDistance(v.distance)
}

func (v *viewer) handle(ev uv.Event, quit context.CancelFunc) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		v.term.Erase()
		v.term.Resize(v.width, v.height)
		v.r.resize(render.TerminalFramebufferSize(v.width, v.height))
		slog.Debug("terminal resized", "cols", v.width, "rows", v.height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape"):
			if v.view.LightMode {
				v.view.LightMode = false
			} else {
				quit()
			}
		case ev.MatchString("ctrl+c"):
			quit()
		case ev.MatchString("w", "up"):
			v.torque.pitch = -torqueStrength
		case ev.MatchString("s", "down"):
			v.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			v.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			v.torque.yaw = torqueStrength
		case ev.MatchString("q"):
			v.torque.roll = -torqueStrength
		case ev.MatchString("e"):
			v.torque.roll = torqueStrength
		case ev.MatchString("space"):
			v.rotation.ApplyImpulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("r"):
			v.rotation.Reset()
			v.distance = v.cfg.Viewer.Distance
			v.r.cam.SetDistance(v.distance)
		case ev.MatchString("+", "="):
			v.zoom(-0.5)
		case ev.MatchString("-", "_"):
			v.zoom(0.5)
		case ev.MatchString("m"):
			v.view.Mode = v.view.Mode.Next()
		case ev.MatchString("t"):
			v.view.TextureEnabled = !v.view.TextureEnabled
		case ev.MatchString("x"):
			if v.view.Mode == config.ModeWireframe {
				v.view.Mode = config.ModeTextured
			} else {
				v.view.Mode = config.ModeWireframe
			}
		case ev.MatchString("l"):
			v.view.LightMode = true
			v.view.PendingLight = v.view.LightDir
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			v.view.ShowHUD = !v.view.ShowHUD
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			v.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			v.torque.yaw = 0
		case ev.MatchString("q", "e"):
			v.torque.roll = 0
		}

	case uv.MouseClickEvent:
		if v.view.LightMode {
			v.view.LightDir = v.view.PendingLight
			v.view.LightMode = false
			slog.Debug("light set", "direction", lightAngle(v.view.LightDir))
		} else {
			v.mouseDown = true
			v.lastMouseX, v.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.view.LightMode {
			v.view.PendingLight = v.view.ScreenToLightDir(ev.X, ev.Y, v.width, v.height)
		} else if v.mouseDown {
			dx := ev.X - v.lastMouseX
			dy := ev.Y - v.lastMouseY
			v.rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastMouseX, v.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.zoom(-0.5)
		case uv.MouseWheelDown:
			v.zoom(0.5)
		}
	}
}

// lightAngle formats a light direction for logging.
func lightAngle(d math3d.Vec3) string {
	return fmt.Sprintf("az %.0f° el %.0f°", math.Atan2(d.X, d.Z)*180/math.Pi, math.Asin(max(-1, min(1, d.Y)))*180/math.Pi)
}
