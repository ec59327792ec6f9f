package pipeline

import "math"

// DepthBuffer holds one depth value per pixel, row-major. Larger values are
// closer to the camera; a cleared buffer holds -math.MaxFloat64 so the
// first fragment at every pixel passes.
type DepthBuffer struct {
	width, height int
	values        []float64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{}
	d.Resize(width, height)
	return d
}

// Resize changes the dimensions and clears the buffer. The backing array is
// reused when it is large enough.
func (d *DepthBuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	n := width * height
	if cap(d.values) >= n {
		d.values = d.values[:n]
	} else {
		d.values = make([]float64, n)
	}
	d.width, d.height = width, height
	d.Reset()
}

// Reset clears every value to -math.MaxFloat64.
func (d *DepthBuffer) Reset() {
	// Copy-doubling is faster than a per-element loop.
	n := len(d.values)
	if n == 0 {
		return
	}
	d.values[0] = -math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(d.values[i:], d.values[:i])
	}
}

// Size returns the buffer dimensions.
func (d *DepthBuffer) Size() (width, height int) {
	return d.width, d.height
}

// Len returns the number of stored values.
func (d *DepthBuffer) Len() int {
	return len(d.values)
}

// At returns the depth at (x, y), or -math.MaxFloat64 outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return -math.MaxFloat64
	}
	return d.values[y*d.width+x]
}

// Set stores z at (x, y). Out-of-range coordinates are ignored.
func (d *DepthBuffer) Set(x, y int, z float64) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	d.values[y*d.width+x] = z
}

// Test reports whether a fragment at depth z is closer than the stored
// value. Out-of-range coordinates never pass.
func (d *DepthBuffer) Test(x, y int, z float64) bool {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return false
	}
	return z > d.values[y*d.width+x]
}

