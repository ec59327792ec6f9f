package pipeline

// Varying is the per-vertex output of a vertex shader that the pipeline
// interpolates across a triangle. The pipeline only sees it as a flat run
// of float64 components: Flatten and Unflatten must agree on their count
// and order, and Len must report that count.
//
// V is the implementing type itself, for example
//
//	type Color struct{ R, G, B float64 }
//
//	func (Color) Len() int                 { return 3 }
//	func (c Color) Flatten(dst []float64)   { dst[0], dst[1], dst[2] = c.R, c.G, c.B }
//	func (Color) Unflatten(s []float64) Color { return Color{s[0], s[1], s[2]} }
type Varying[V any] interface {
	Len() int
	Flatten(dst []float64)
	Unflatten(src []float64) V
}

// NoVarying is the varying of shaders that pass nothing from the vertex
// stage to the fragment stage.
type NoVarying struct{}

func (NoVarying) Len() int                      { return 0 }
func (NoVarying) Flatten([]float64)             {}
func (NoVarying) Unflatten([]float64) NoVarying { return NoVarying{} }

// Floats is a varying of arbitrary length.
type Floats []float64

func (f Floats) Len() int { return len(f) }

func (f Floats) Flatten(dst []float64) { copy(dst, f) }

// Unflatten copies src, since the pipeline reuses its interpolation buffer.
func (Floats) Unflatten(src []float64) Floats {
	return append(Floats(nil), src...)
}
