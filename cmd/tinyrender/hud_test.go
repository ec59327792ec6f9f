package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/pipeline"
)

func TestHUDRender(t *testing.T) {
	view := NewViewState(config.Default())
	hud := NewHUD("duck.glb", 4212)
	hud.Update(pipeline.Stats{Written: 42, DepthRejected: 7})

	var buf bytes.Buffer
	hud.Render(&buf, 80, 24, view)
	if strings.Contains(buf.String(), "FPS") {
		t.Error("hidden HUD drew the FPS counter")
	}
	if !strings.Contains(buf.String(), "\x1b[2K") {
		t.Error("hidden HUD did not clear its rows")
	}

	view.ShowHUD = true
	buf.Reset()
	hud.Render(&buf, 80, 24, view)
	for _, want := range []string{"FPS", "duck.glb", "4212 polys", "px 42", "z-rej 7", "textured"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("HUD output missing %q", want)
		}
	}

	if strings.Contains(buf.String(), "↻") {
		t.Error("spin marker shown at rest")
	}
	rot := NewRotationState(30)
	rot.ApplyImpulse(0, 1, 0)
	rot.Update()
	view.Spinning = rot.Spinning()
	buf.Reset()
	hud.Render(&buf, 80, 24, view)
	if !strings.Contains(buf.String(), "↻") {
		t.Error("spin marker missing while the model spins")
	}

	view.LightMode = true
	buf.Reset()
	hud.Render(&buf, 80, 24, view)
	if !strings.Contains(buf.String(), "LIGHT MODE") || strings.Contains(buf.String(), "polys") {
		t.Errorf("light mode overlay = %q", buf.String())
	}
}

func TestScreenToLightDir(t *testing.T) {
	view := NewViewState(config.Default())

	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"centre faces the viewer", 40, 12, math3d.V3(0, 0, 1)},
		{"top edge points up", 40, 0, math3d.V3(0, 1, 0)},
		{"corner is clamped to the rim", 0, 24, math3d.V3(-math.Sqrt2/2, -math.Sqrt2/2, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := view.ScreenToLightDir(tc.x, tc.y, 80, 24)
			if got.Sub(tc.want).Len() > 1e-9 {
				t.Errorf("ScreenToLightDir(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestViewStateLight(t *testing.T) {
	view := NewViewState(config.Default())
	if math.Abs(view.Light().Len()-1) > 1e-12 {
		t.Errorf("light direction not normalised: %v", view.Light())
	}

	view.LightMode = true
	view.PendingLight = math3d.V3(0, 0, 1)
	if view.Light() != view.PendingLight {
		t.Error("light mode should shade with the pending direction")
	}
}
