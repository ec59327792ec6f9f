package shaders

import (
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/pipeline"
)

// Solid fills every triangle with the uniform base colour, unlit.
type Solid struct{}

func (Solid) Vertex(v models.Vertex, u Uniform) (math3d.Vec4, pipeline.NoVarying) {
	return u.clip(v.Position), pipeline.NoVarying{}
}

func (Solid) Fragment(_ pipeline.NoVarying, u Uniform) (math3d.Vec4, bool) {
	return u.Color, true
}

// Shade is a single interpolated light intensity.
type Shade struct {
	I float64
}

func (Shade) Len() int                      { return 1 }
func (s Shade) Flatten(dst []float64)       { dst[0] = s.I }
func (Shade) Unflatten(src []float64) Shade { return Shade{src[0]} }

// Gouraud lights each vertex and interpolates the intensity across the
// triangle.
type Gouraud struct{}

func (Gouraud) Vertex(v models.Vertex, u Uniform) (math3d.Vec4, Shade) {
	return u.clip(v.Position), Shade{u.Intensity(v.Normal)}
}

func (Gouraud) Fragment(s Shade, u Uniform) (math3d.Vec4, bool) {
	return lit(u.Color, s.I), true
}

// TexCoord is an interpolated texture coordinate with its light intensity.
type TexCoord struct {
	U, V, I float64
}

func (TexCoord) Len() int { return 3 }

func (t TexCoord) Flatten(dst []float64) {
	dst[0], dst[1], dst[2] = t.U, t.V, t.I
}

func (TexCoord) Unflatten(src []float64) TexCoord {
	return TexCoord{src[0], src[1], src[2]}
}

// Textured modulates the sampled texture by the base colour and the
// Gouraud intensity. Texels whose alpha falls below the uniform's
// AlphaCutoff are discarded, so cut-out geometry such as foliage leaves
// the depth buffer untouched. Without a texture it behaves like Gouraud.
type Textured struct{}

func (Textured) Vertex(v models.Vertex, u Uniform) (math3d.Vec4, TexCoord) {
	return u.clip(v.Position), TexCoord{v.UV.X, v.UV.Y, u.Intensity(v.Normal)}
}

func (Textured) Fragment(t TexCoord, u Uniform) (math3d.Vec4, bool) {
	if u.Texture == nil {
		return lit(u.Color, t.I), true
	}
	c := u.Texture.Sample(t.U, t.V)
	texel := math3d.V4(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
	base := math3d.V4(texel.X*u.Color.X, texel.Y*u.Color.Y, texel.Z*u.Color.Z, texel.W*u.Color.W)
	if base.W < u.AlphaCutoff {
		return math3d.Vec4{}, false
	}
	return lit(base, t.I), true
}

// lit scales the colour channels by i, leaving alpha alone.
func lit(c math3d.Vec4, i float64) math3d.Vec4 {
	return math3d.V4(c.X*i, c.Y*i, c.Z*i, c.W)
}
