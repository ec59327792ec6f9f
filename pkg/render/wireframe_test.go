package render

import (
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
)

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           [4]float64
		ok             bool
	}{
		{"inside", 1, 1, 5, 5, [4]float64{1, 1, 5, 5}, true},
		{"crosses left", -5, 5, 5, 5, [4]float64{0, 5, 5, 5}, true},
		{"crosses both", -10, 2, 20, 2, [4]float64{0, 2, 10, 2}, true},
		{"diagonal corner", -5, -5, 15, 15, [4]float64{0, 0, 10, 10}, true},
		{"outside above", 1, -3, 8, -1, [4]float64{}, false},
		{"outside parallel", 12, 0, 12, 10, [4]float64{}, false},
		{"misses corner", 8, -5, 15, 3, [4]float64{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clipSegment(tc.x0, tc.y0, tc.x1, tc.y1, 10, 10)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			got := [4]float64{x0, y0, x1, y1}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Errorf("clipped to %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}

func countSet(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c.A != 0 {
			n++
		}
	}
	return n
}

func TestWireframeDrawMesh(t *testing.T) {
	fb := NewFramebuffer(40, 40)
	cam := NewCamera()
	cam.SetAspectFromSize(40, 40)
	w := NewWireframe(cam, fb)

	w.DrawMesh(models.Cube(2), math3d.RotateY(0.3), ColorGreen)
	if countSet(fb) == 0 {
		t.Fatal("cube wireframe drew nothing")
	}
	// The cube is framed in the middle; the border stays empty.
	for x := range 40 {
		if fb.GetPixel(x, 0).A != 0 || fb.GetPixel(x, 39).A != 0 {
			t.Fatalf("pixel on the border row drawn at x=%d", x)
		}
	}
}

func TestWireframeSkipsLinesBehindCamera(t *testing.T) {
	fb := NewFramebuffer(20, 20)
	w := NewWireframe(NewCamera(), fb)

	w.DrawLine3D(math3d.V3(0, 0, 0), math3d.V3(0, 0, 20), ColorRed)
	if n := countSet(fb); n != 0 {
		t.Errorf("line through the camera drew %d pixels", n)
	}

	// Far off to the side: projected but clipped away entirely.
	w.DrawLine3D(math3d.V3(100, 0, 0), math3d.V3(100, 1, 0), ColorRed)
	if n := countSet(fb); n != 0 {
		t.Errorf("off-screen line drew %d pixels", n)
	}
}

func TestWireframeAxesAndGrid(t *testing.T) {
	fb := NewFramebuffer(40, 40)
	cam := NewCamera()
	cam.Eye = math3d.V3(3, 4, 5)
	cam.SetAspectFromSize(40, 40)
	w := NewWireframe(cam, fb)

	w.DrawAxes(1)
	for _, c := range []Color{ColorRed, ColorGreen, ColorBlue} {
		found := false
		for _, p := range fb.Pixels {
			if p == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("axis colour %v not drawn", c)
		}
	}

	before := countSet(fb)
	w.DrawGrid(-1, 4, 1, ColorGray)
	if countSet(fb) <= before {
		t.Error("grid drew nothing")
	}
}
