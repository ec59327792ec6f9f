package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
)

// Wireframe draws 3D line overlays into a framebuffer. Lines are not depth
// tested, so hidden edges stay visible.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a line in 3D space. Lines with an endpoint behind the
// camera are skipped.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)
	if !vis1 || !vis2 {
		return
	}

	x1, y1, x2, y2, ok := clipSegment(x1, y1, x2, y2, float64(w.fb.Width), float64(w.fb.Height))
	if !ok {
		return
	}
	w.fb.DrawLine(w.pixelX(x1), w.pixelY(y1), w.pixelX(x2), w.pixelY(y2), color)
}

func (w *Wireframe) pixelX(x float64) int {
	return max(0, min(int(math.Floor(x)), w.fb.Width-1))
}

func (w *Wireframe) pixelY(y float64) int {
	return max(0, min(int(math.Floor(y)), w.fb.Height-1))
}

// DrawMesh draws every edge of mesh transformed by model.
func (w *Wireframe) DrawMesh(mesh *models.Mesh, model math3d.Mat4, color Color) {
	world := make([]math3d.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		world[i] = model.MulPoint(v.Position)
	}
	for _, e := range mesh.Edges() {
		w.DrawLine3D(world[e[0]], world[e[1]], color)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at height y.
func (w *Wireframe) DrawGrid(y, size, step float64, color Color) {
	half := size / 2
	n := int(math.Floor(size/step + 1e-9))
	for i := 0; i <= n; i++ {
		t := -half + float64(i)*step
		w.DrawLine3D(math3d.V3(t, y, -half), math3d.V3(t, y, half), color)
		w.DrawLine3D(math3d.V3(-half, y, t), math3d.V3(half, y, t), color)
	}
}

// clipSegment clips a segment to [0, width]×[0, height] with the
// Liang-Barsky algorithm. It reports false when nothing is left.
func clipSegment(x0, y0, x1, y1, width, height float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0},
		{dx, width - x0},
		{-dy, y0},
		{dy, height - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
