package pipeline

import "github.com/taigrr/tinyrender/pkg/math3d"

// VertexShader maps one vertex attribute to a clip-space position and the
// varying that is interpolated to the fragment stage. U is the uniform data
// shared by every vertex of a draw call.
type VertexShader[A, U, V any] interface {
	Vertex(attr A, u U) (math3d.Vec4, V)
}

// FragmentShader computes the RGBA colour of one pixel from the
// interpolated varying. Returning false discards the pixel: nothing is
// written and the depth buffer keeps its previous value.
type FragmentShader[U, V any] interface {
	Fragment(v V, u U) (math3d.Vec4, bool)
}

// VertexFunc adapts an ordinary function to a VertexShader.
type VertexFunc[A, U, V any] func(attr A, u U) (math3d.Vec4, V)

// Vertex calls f(attr, u).
func (f VertexFunc[A, U, V]) Vertex(attr A, u U) (math3d.Vec4, V) {
	return f(attr, u)
}

// FragmentFunc adapts an ordinary function to a FragmentShader.
type FragmentFunc[U, V any] func(v V, u U) (math3d.Vec4, bool)

// Fragment calls f(v, u).
func (f FragmentFunc[U, V]) Fragment(v V, u U) (math3d.Vec4, bool) {
	return f(v, u)
}

// PixelSink receives the shaded pixels of a frame. Channels are in [0, 1]
// nominally; the sink decides how to treat values outside that range.
type PixelSink interface {
	Size() (width, height int)
	SetPixel(x, y int, r, g, b, a float64)
}
