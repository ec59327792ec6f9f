// Package pipeline runs triangles through a programmable two-stage shader
// pipeline: vertex shading, perspective division, viewport mapping,
// rasterization, depth testing and fragment shading.
//
// Shader stages are ordinary Go values. The attribute, uniform and varying
// types are type parameters, so a draw call is checked at compile time and
// no per-pixel interface conversions happen on the varying data.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/raster"
)

var (
	// ErrIncompleteTriangle is returned when the attribute count is not a
	// multiple of three. Nothing is drawn.
	ErrIncompleteTriangle = errors.New("pipeline: attribute count is not a multiple of 3")

	// ErrVaryingLength is returned when the vertex shader produces varyings
	// of different lengths within one triangle.
	ErrVaryingLength = errors.New("pipeline: varying length differs within a triangle")
)

// Stats counts what happened during the draw calls since the last reset.
type Stats struct {
	Triangles     int // Triangles submitted
	Skipped       int // Triangles with a non-finite screen position
	Fragments     int // Pixels produced by the rasterizer
	DepthRejected int // Fragments that failed the depth test
	Discarded     int // Fragments discarded by the fragment shader
	Written       int // Pixels written to the sink
}

// Pipeline binds a pixel sink to its depth buffer. It is not safe for
// concurrent use.
type Pipeline struct {
	sink    PixelSink
	depth   *DepthBuffer
	stats   Stats
	scratch []float64 // flattened varyings of the current triangle
}

// New creates a pipeline drawing into sink.
func New(sink PixelSink) *Pipeline {
	w, h := sink.Size()
	return &Pipeline{
		sink:  sink,
		depth: NewDepthBuffer(w, h),
	}
}

// Sink returns the pixel sink.
func (p *Pipeline) Sink() PixelSink {
	return p.sink
}

// Depth returns the depth buffer. Rows are stored in output order, after
// the vertical flip.
func (p *Pipeline) Depth() *DepthBuffer {
	return p.depth
}

// ClearDepth resets the depth buffer, resizing it first if the sink has
// changed size.
func (p *Pipeline) ClearDepth() {
	if !p.syncSize() {
		p.depth.Reset()
	}
}

// Stats returns the counters accumulated since the last ResetStats.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// ResetStats zeroes the counters.
func (p *Pipeline) ResetStats() {
	p.stats = Stats{}
}

// syncSize resizes (and so clears) the depth buffer when the sink size no
// longer matches. It reports whether a resize happened.
func (p *Pipeline) syncSize() bool {
	w, h := p.sink.Size()
	dw, dh := p.depth.Size()
	if w == dw && h == dh {
		return false
	}
	Logger().Debug("resizing depth buffer", "from", [2]int{dw, dh}, "to", [2]int{w, h})
	p.depth.Resize(w, h)
	return true
}

// Viewport maps a normalized device coordinate to screen space for a
// width×height target. X and Y map [-1, 1] onto [0, width] and
// [0, height]; Z maps [-1, 1] onto [1, 0], so nearer points have larger
// depth.
func Viewport(ndc math3d.Vec3, width, height int) math3d.Vec3 {
	return math3d.Vec3{
		X: (ndc.X + 1) * float64(width) / 2,
		Y: (ndc.Y + 1) * float64(height) / 2,
		Z: (1 - ndc.Z) / 2,
	}
}

// Render starts a new frame: it clears the depth buffer and the counters,
// then draws attrs.
func Render[A, U any, V Varying[V]](p *Pipeline, vs VertexShader[A, U, V], fs FragmentShader[U, V], attrs []A, u U) error {
	p.ClearDepth()
	p.ResetStats()
	return Draw(p, vs, fs, attrs, u)
}

// Draw shades attrs as a list of triangles, three consecutive attributes
// per triangle, without clearing the depth buffer. Several Draw calls with
// different shaders can therefore share one frame.
//
// Each covered pixel takes the depth and varyings interpolated with the
// screen-space barycentric weights of its centre. A pixel is shaded only if
// its depth is greater than the stored value; the shaded colour, scaled by
// coverage, is written at row height-1-y so that NDC +Y points up in the
// output.
func Draw[A, U any, V Varying[V]](p *Pipeline, vs VertexShader[A, U, V], fs FragmentShader[U, V], attrs []A, u U) error {
	if len(attrs)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrIncompleteTriangle, len(attrs))
	}
	p.syncSize()

	w, h := p.sink.Size()
	clip := raster.R(0, 0, float64(w), float64(h))

	var (
		screen [3]math3d.Vec3
		vary   [3]V
	)
	for t := 0; t < len(attrs); t += 3 {
		p.stats.Triangles++

		for k := range 3 {
			pos, v := vs.Vertex(attrs[t+k], u)
			screen[k] = Viewport(pos.PerspectiveDivide(), w, h)
			vary[k] = v
		}

		n := vary[0].Len()
		if vary[1].Len() != n || vary[2].Len() != n {
			return fmt.Errorf("%w: triangle %d has %d, %d and %d components",
				ErrVaryingLength, t/3, n, vary[1].Len(), vary[2].Len())
		}

		it, err := raster.NewTriangleIter(
			raster.Pt(screen[0].X, screen[0].Y),
			raster.Pt(screen[1].X, screen[1].Y),
			raster.Pt(screen[2].X, screen[2].Y),
			clip,
		)
		if err != nil {
			p.stats.Skipped++
			Logger().Debug("skipping triangle", "index", t/3, "err", err)
			continue
		}

		// Layout: three flattened vertex varyings, then the interpolated one.
		if cap(p.scratch) < 4*n {
			p.scratch = make([]float64, 4*n)
		}
		buf := p.scratch[:4*n]
		f0, f1, f2, out := buf[:n], buf[n:2*n], buf[2*n:3*n], buf[3*n:]
		vary[0].Flatten(f0)
		vary[1].Flatten(f1)
		vary[2].Flatten(f2)

		for px := range it.All() {
			p.stats.Fragments++

			y := h - 1 - px.Y
			z := px.B0*screen[0].Z + px.B1*screen[1].Z + px.B2*screen[2].Z
			if !p.depth.Test(px.X, y, z) {
				p.stats.DepthRejected++
				continue
			}

			for i := range out {
				out[i] = px.B0*f0[i] + px.B1*f1[i] + px.B2*f2[i]
			}
			color, ok := fs.Fragment(vary[0].Unflatten(out), u)
			if !ok {
				p.stats.Discarded++
				continue
			}

			p.depth.Set(px.X, y, z)
			color = color.Scale(px.Coverage)
			p.sink.SetPixel(px.X, y, color.X, color.Y, color.Z, color.W)
			p.stats.Written++
		}
	}
	return nil
}
