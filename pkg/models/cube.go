package models

import "github.com/taigrr/tinyrender/pkg/math3d"

// cubeSides lists each side's outward normal and two in-plane axes with
// u × v = normal, so the side's triangles wind counter-clockwise seen from
// outside.
var cubeSides = [6]struct{ n, u, v math3d.Vec3 }{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
}

// Cube builds an axis-aligned cube centred on the origin. Each side has
// its own four vertices so normals stay flat and every side gets the full
// [0, 1] UV square.
func Cube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	m.Materials = []Material{DefaultMaterial}

	corners := [4]struct{ su, sv float64 }{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, s := range cubeSides {
		base := len(m.Vertices)
		for _, c := range corners {
			pos := s.n.Add(s.u.Scale(c.su)).Add(s.v.Scale(c.sv)).Scale(h)
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos,
				Normal:   s.n,
				UV:       math3d.V2((c.su+1)/2, (c.sv+1)/2),
			})
		}
		m.Faces = append(m.Faces,
			Face{V: [3]int{base, base + 1, base + 2}},
			Face{V: [3]int{base, base + 2, base + 3}},
		)
	}

	m.CalculateBounds()
	return m
}
