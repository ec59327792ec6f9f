package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/pipeline"
)

// Camera is a perspective camera looking from Eye towards Target.
type Camera struct {
	Eye    math3d.Vec3 // Position in world space
	Target math3d.Vec3 // Point the camera looks at
	Up     math3d.Vec3 // Approximate up direction

	// Projection parameters
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64 // Near plane distance
	Far    float64 // Far plane distance
}

// NewCamera creates a camera five units along +Z looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Eye:    math3d.V3(0, 0, 5),
		Target: math3d.Zero3(),
		Up:     math3d.Up(),
		FOV:    math.Pi / 3, // 60 degrees
		Aspect: 16.0 / 9.0,
		Near:   0.1,
		Far:    100,
	}
}

// SetAspectFromSize sets the aspect ratio for a width×height target.
func (c *Camera) SetAspectFromSize(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float64(width) / float64(height)
	}
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the camera-to-clip transform.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Eye).Normalize()
}

// Distance returns the distance from Eye to Target.
func (c *Camera) Distance() float64 {
	return c.Target.Sub(c.Eye).Len()
}

// SetDistance moves Eye along the viewing direction so it is d units from
// Target.
func (c *Camera) SetDistance(d float64) {
	c.Eye = c.Target.Sub(c.Forward().Scale(d))
}

// Orbit rotates Eye around Target by yaw about the world Y axis, keeping
// the distance.
func (c *Camera) Orbit(yaw float64) {
	offset := c.Eye.Sub(c.Target)
	c.Eye = c.Target.Add(math3d.RotateY(yaw).MulDir(offset))
}

// WorldToScreen projects a world point onto a width×height target with
// y growing downwards, matching the rows written by the pipeline.
// Returns (screenX, screenY, depth, visible); points at or behind the
// camera plane are not visible.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	s := pipeline.Viewport(clip.PerspectiveDivide(), width, height)
	return s.X, float64(height) - s.Y, s.Z, true
}
