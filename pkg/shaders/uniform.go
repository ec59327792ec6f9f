// Package shaders provides the stock vertex and fragment shaders for
// drawing models.Vertex meshes with the pipeline package.
package shaders

import (
	"fmt"
	"image/color"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Sampler looks up a texture colour at a UV coordinate.
type Sampler interface {
	Sample(u, v float64) color.RGBA
}

// Uniform is the per-draw-call state shared by every stock shader.
type Uniform struct {
	MVP    math3d.Mat4 // projection · view · model
	Model  math3d.Mat4
	Normal math3d.Mat4 // inverse transpose of Model

	Light   math3d.Vec3 // unit direction towards the light, world space
	Ambient float64     // light received by faces turned away from Light

	Color       math3d.Vec4 // base colour, RGBA in [0, 1]
	Texture     Sampler     // optional; nil means untextured
	AlphaCutoff float64     // textured fragments below this alpha are discarded
}

// Default lighting terms.
const (
	DefaultAmbient     = 0.3
	DefaultAlphaCutoff = 0.5
)

// NewUniform builds the uniform for a model drawn from a camera. The
// normal matrix needs the inverse of model, so a singular model matrix
// (a zero scale, for instance) is reported as math3d.ErrSingular.
func NewUniform(model, view, proj math3d.Mat4, light math3d.Vec3) (Uniform, error) {
	inv, ok := model.Inverse()
	if !ok {
		return Uniform{}, fmt.Errorf("normal matrix: %w", math3d.ErrSingular)
	}
	return Uniform{
		MVP:         proj.Mul(view).Mul(model),
		Model:       model,
		Normal:      inv.Transpose(),
		Light:       light.Normalize(),
		Ambient:     DefaultAmbient,
		Color:       math3d.V4(1, 1, 1, 1),
		AlphaCutoff: DefaultAlphaCutoff,
	}, nil
}

// Intensity returns the Lambert lighting term for a model-space normal:
// Ambient plus the remaining light scaled by the cosine to Light.
func (u *Uniform) Intensity(normal math3d.Vec3) float64 {
	n := u.Normal.MulDir(normal).Normalize()
	diffuse := max(0, n.Dot(u.Light))
	return u.Ambient + (1-u.Ambient)*diffuse
}

func (u *Uniform) clip(pos math3d.Vec3) math3d.Vec4 {
	return u.MVP.MulVec4(math3d.V4FromV3(pos, 1))
}
