package math3d

import (
	"errors"
	"math"
)

// ErrSingular is returned by callers that need an inverse of a matrix whose
// determinant is exactly zero.
var ErrSingular = errors.New("math3d: singular matrix")

// Mat4 is a 4x4 matrix stored in row-major order.
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// Vectors are columns, so a.Mul(b) applied to v transforms by b first:
// a.Mul(b).MulVec4(v) == a.MulVec4(b.MulVec4(v)).
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis (right-handed: a
// positive angle turns +Z towards +X).
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Basis creates the change-of-basis matrix whose rows are i, j and k.
// For an orthonormal basis it maps world coordinates to coordinates in
// that frame.
func Basis(i, j, k Vec3) Mat4 {
	return Mat4{
		i.X, i.Y, i.Z, 0,
		j.X, j.Y, j.Z, 0,
		k.X, k.Y, k.Z, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix for a camera at eye looking at target.
// The camera looks down its own -Z axis.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return Basis(x, y, z).Mul(Translate(eye.Negate()))
}

// Frustum creates a perspective projection for the view volume bounded by
// left, right, bottom and top on the near plane. The resulting clip-space W
// is -Z of the camera-space point.
func Frustum(left, right, bottom, top, near, far float64) Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near

	return Mat4{
		2 * near / rl, 0, (right + left) / rl, 0,
		0, 2 * near / tb, (top + bottom) / tb, 0,
		0, 0, -(far + near) / fn, -2 * far * near / fn,
		0, 0, -1, 0,
	}
}

// Perspective creates a symmetric perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	top := near * math.Tan(fovy/2)
	right := top * aspect
	return Frustum(-right, right, -top, top, near, far)
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms a Vec3 as a point (w=1), dividing by the resulting W
// unless it is zero.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	p := m.MulVec4(V4FromV3(v, 1))
	if p.W == 0 || p.W == 1 {
		return p.Vec3()
	}
	return p.PerspectiveDivide()
}

// MulDir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 0)).Vec3()
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// minor returns the determinant of the 3x3 matrix left after removing
// row r and column c.
func (m Mat4) minor(r, c int) float64 {
	var s [9]float64
	n := 0
	for row := range 4 {
		if row == r {
			continue
		}
		for col := range 4 {
			if col == c {
				continue
			}
			s[n] = m[row*4+col]
			n++
		}
	}
	return s[0]*(s[4]*s[8]-s[5]*s[7]) -
		s[1]*(s[3]*s[8]-s[5]*s[6]) +
		s[2]*(s[3]*s[7]-s[4]*s[6])
}

// cofactor returns the signed minor of element (r, c).
func (m Mat4) cofactor(r, c int) float64 {
	if (r+c)%2 == 1 {
		return -m.minor(r, c)
	}
	return m.minor(r, c)
}

// Determinant returns the determinant of the matrix, expanded along the
// first row.
func (m Mat4) Determinant() float64 {
	var det float64
	for c := range 4 {
		det += m[c] * m.cofactor(0, c)
	}
	return det
}

// Adjugate returns the transposed matrix of cofactors.
func (m Mat4) Adjugate() Mat4 {
	var adj Mat4
	for r := range 4 {
		for c := range 4 {
			adj[c*4+r] = m.cofactor(r, c)
		}
	}
	return adj
}

// Inverse returns the inverse of the matrix. The second result is false,
// and the matrix is zero, when the determinant is exactly zero.
func (m Mat4) Inverse() (Mat4, bool) {
	det := m.Determinant()
	if det == 0 {
		return Mat4{}, false
	}

	inv := m.Adjugate()
	for i := range inv {
		inv[i] /= det
	}
	return inv, true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row*4+col]
}

// ApproxEqual reports whether every element of a and b differs by at most
// eps.
//
//nolint:st1016 // a,b naming convention is clearer for comparisons
func (a Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
