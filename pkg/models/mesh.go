// Package models provides triangle meshes and the loaders that build them.
package models

import (
	"image"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Faces     []Face
	Materials []Material

	// Bounding box, updated by CalculateBounds
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Vertex holds the attributes of one mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle referencing three vertices.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials, -1 for none
}

// Material is the subset of a glTF PBR material the renderer uses.
type Material struct {
	Name      string
	BaseColor [4]float64  // RGBA in 0-1 range
	Metallic  float64     // 0 = dielectric, 1 = metal
	Roughness float64     // 0 = smooth, 1 = rough
	BaseMap   image.Image // Base colour texture, nil if untextured
}

// DefaultMaterial is used for faces without a material.
var DefaultMaterial = Material{
	Name:      "default",
	BaseColor: [4]float64{1, 1, 1, 1},
	Roughness: 1,
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FitTransform returns the transform that centres the bounding box on the
// origin and scales its largest dimension to size.
func (m *Mesh) FitTransform(size float64) math3d.Mat4 {
	center := m.Center()
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return math3d.Translate(center.Negate())
	}
	return math3d.ScaleUniform(size / maxDim).Mul(math3d.Translate(center.Negate()))
}

// CalculateNormals assigns each face's normal to its vertices. Vertices
// shared between faces end up with the normal of the last face.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		normal := m.faceNormal(f).Normalize()
		for _, i := range f.V {
			m.Vertices[i].Normal = normal
		}
	}
}

// CalculateSmoothNormals averages the normals of the faces around each
// vertex, weighted by face area.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		normal := m.faceNormal(f) // unnormalized: length is twice the area
		for _, i := range f.V {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// Transform applies mat to every vertex. Normals are transformed by the
// inverse transpose so they stay perpendicular under non-uniform scaling;
// for a singular mat they fall back to mat itself.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat
	if inv, ok := mat.Inverse(); ok {
		normalMat = inv.Transpose()
	}
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulPoint(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulDir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh. Texture images are shared.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = append([]Vertex(nil), m.Vertices...)
	clone.Faces = append([]Face(nil), m.Faces...)
	clone.Materials = append([]Material(nil), m.Materials...)
	return &clone
}

// Material returns material i, or DefaultMaterial when i is out of range
// (including -1).
func (m *Mesh) Material(i int) Material {
	if i < 0 || i >= len(m.Materials) {
		return DefaultMaterial
	}
	return m.Materials[i]
}

// Expand resolves the face indices into a flat attribute list, three
// vertices per triangle, in face order.
func (m *Mesh) Expand() []Vertex {
	out := make([]Vertex, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		out = append(out, m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]])
	}
	return out
}

// Batch is the expanded geometry of all faces sharing one material.
type Batch struct {
	Material int // Index into Mesh.Materials, -1 for none
	Vertices []Vertex
}

// Batches groups the expanded faces by material, in order of each
// material's first use.
func (m *Mesh) Batches() []Batch {
	var batches []Batch
	index := make(map[int]int)
	for _, f := range m.Faces {
		bi, ok := index[f.Material]
		if !ok {
			bi = len(batches)
			index[f.Material] = bi
			batches = append(batches, Batch{Material: f.Material})
		}
		b := &batches[bi]
		b.Vertices = append(b.Vertices, m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]])
	}
	return batches
}

// Edges returns every distinct edge of the mesh as a pair of vertex
// indices, lower index first.
func (m *Mesh) Edges() [][2]int {
	seen := make(map[[2]int]bool)
	var edges [][2]int
	for _, f := range m.Faces {
		for k := range 3 {
			a, b := f.V[k], f.V[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := [2]int{a, b}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}
