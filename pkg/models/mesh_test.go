package models

import (
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

func vec2(x, y float64) math3d.Vec2 { return math3d.V2(x, y) }

const eps = 1e-9

func approxVec3(a, b math3d.Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestExpand(t *testing.T) {
	mesh := NewMesh("quad")
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(1, 1, 0)},
		{Position: math3d.V3(0, 1, 0)},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}},
	}

	got := mesh.Expand()
	want := []int{0, 1, 2, 0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expand() returned %d vertices, want %d", len(got), len(want))
	}
	for i, vi := range want {
		if got[i] != mesh.Vertices[vi] {
			t.Errorf("vertex %d = %v, want mesh vertex %d", i, got[i], vi)
		}
	}

	if n := len(NewMesh("empty").Expand()); n != 0 {
		t.Errorf("empty mesh expanded to %d vertices", n)
	}
}

func TestCube(t *testing.T) {
	cube := Cube(2)

	if cube.VertexCount() != 24 {
		t.Errorf("VertexCount() = %d, want 24", cube.VertexCount())
	}
	if cube.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", cube.TriangleCount())
	}
	if !approxVec3(cube.BoundsMin, math3d.V3(-1, -1, -1)) || !approxVec3(cube.BoundsMax, math3d.V3(1, 1, 1)) {
		t.Errorf("bounds = %v..%v, want ±1", cube.BoundsMin, cube.BoundsMax)
	}

	for i, f := range cube.Faces {
		// Counter-clockwise winding seen from outside: the geometric normal
		// matches the stored normal and points away from the centre.
		n := cube.faceNormal(f).Normalize()
		if !approxVec3(n, cube.Vertices[f.V[0]].Normal) {
			t.Errorf("face %d: winding normal %v, stored %v", i, n, cube.Vertices[f.V[0]].Normal)
		}
		if n.Dot(cube.Vertices[f.V[0]].Position) <= 0 {
			t.Errorf("face %d: normal %v points inwards", i, n)
		}
	}

	for i, v := range cube.Vertices {
		if v.UV.X < 0 || v.UV.X > 1 || v.UV.Y < 0 || v.UV.Y > 1 {
			t.Errorf("vertex %d: UV %v outside the unit square", i, v.UV)
		}
	}

	// Each side has four outline edges and one diagonal.
	if n := len(cube.Edges()); n != 30 {
		t.Errorf("len(Edges()) = %d, want 30", n)
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	// Two faces folded along the shared edge 0-1.
	mesh := NewMesh("fold")
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(0, 0, -1)},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}}, // normal +Z
		{V: [3]int{0, 1, 3}}, // normal +Y
	}

	mesh.CalculateSmoothNormals()
	want := math3d.V3(0, 1, 1).Normalize()
	if got := mesh.Vertices[0].Normal; !approxVec3(got, want) {
		t.Errorf("shared vertex normal = %v, want %v", got, want)
	}
	if got := mesh.Vertices[2].Normal; !approxVec3(got, math3d.V3(0, 0, 1)) {
		t.Errorf("unshared vertex normal = %v, want +Z", got)
	}

	mesh.CalculateNormals()
	if got := mesh.Vertices[3].Normal; !approxVec3(got, math3d.V3(0, 1, 0)) {
		t.Errorf("flat normal = %v, want +Y", got)
	}
}

func TestTransformNonUniformScale(t *testing.T) {
	// A 45° slope stretched along X must keep its normal perpendicular.
	mesh := NewMesh("slope")
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 1, 0)},
		{Position: math3d.V3(0, 0, 1)},
	}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}}}
	mesh.CalculateNormals()

	mesh.Transform(math3d.Scale(math3d.V3(3, 1, 1)))

	edge := mesh.Vertices[1].Position.Sub(mesh.Vertices[0].Position)
	if d := mesh.Vertices[0].Normal.Dot(edge); math.Abs(d) > eps {
		t.Errorf("normal %v not perpendicular to edge %v (dot %v)", mesh.Vertices[0].Normal, edge, d)
	}
	if !approxVec3(mesh.BoundsMax, math3d.V3(3, 1, 1)) {
		t.Errorf("bounds not updated: max %v", mesh.BoundsMax)
	}
}

func TestFitTransform(t *testing.T) {
	mesh := NewMesh("box")
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(10, 20, 30)},
		{Position: math3d.V3(14, 21, 30)},
	}
	mesh.CalculateBounds()

	fit := mesh.FitTransform(2)
	lo := fit.MulPoint(mesh.BoundsMin)
	hi := fit.MulPoint(mesh.BoundsMax)
	if !approxVec3(lo, math3d.V3(-1, -0.25, 0)) || !approxVec3(hi, math3d.V3(1, 0.25, 0)) {
		t.Errorf("fitted bounds = %v..%v", lo, hi)
	}

	// A single point cannot be scaled, only centred.
	point := NewMesh("point")
	point.Vertices = []Vertex{{Position: math3d.V3(5, 5, 5)}}
	point.CalculateBounds()
	if got := point.FitTransform(2).MulPoint(math3d.V3(5, 5, 5)); !approxVec3(got, math3d.Zero3()) {
		t.Errorf("point fitted to %v, want origin", got)
	}
}
