package raster

import (
	"errors"
	"iter"
	"math"
)

// ErrNonFinite is returned when a triangle vertex has a NaN or infinite
// coordinate, typically a vertex that projected from the camera plane.
var ErrNonFinite = errors.New("raster: non-finite vertex coordinate")

// TriangleIter walks the pixels covered by a triangle in row-major order
// (y ascending, x ascending within a row).
//
// A pixel is covered when its centre (x+0.5, y+0.5) lies strictly inside
// the triangle, or exactly on an edge that is a top or left edge.
// The zero value yields no pixels.
type TriangleIter struct {
	v0, v1, v2 Point
	area2      float64 // twice the triangle area
	topLeft    [3]bool // edges v1→v2, v2→v0, v0→v1
	swapped    bool    // v1 and v2 were exchanged to fix the winding
	minX, minY int     // clamped bounding box, inclusive
	maxX, maxY int     // clamped bounding box, exclusive
	x, y       int     // next candidate pixel
}

// NewTriangleIter prepares an iterator over the pixels of triangle
// (v0, v1, v2) that fall inside clip. The vertices may be in either
// winding order. Degenerate triangles and triangles outside clip produce
// an iterator that yields nothing.
func NewTriangleIter(v0, v1, v2 Point, clip Rect) (*TriangleIter, error) {
	if !v0.finite() || !v1.finite() || !v2.finite() {
		return nil, ErrNonFinite
	}

	it := &TriangleIter{v0: v0, v1: v1, v2: v2}

	// Normalize to counter-clockwise winding (positive area).
	area2 := v1.Sub(v0).Cross(v2.Sub(v0))
	if area2 < 0 {
		it.v1, it.v2 = it.v2, it.v1
		it.swapped = true
		area2 = -area2
	}
	if area2 == 0 {
		return it, nil
	}
	it.area2 = area2

	it.topLeft = [3]bool{
		isTopLeft(it.v1, it.v2),
		isTopLeft(it.v2, it.v0),
		isTopLeft(it.v0, it.v1),
	}

	minX := math.Max(math.Floor(min(v0.X, v1.X, v2.X)), math.Ceil(clip.Min.X))
	minY := math.Max(math.Floor(min(v0.Y, v1.Y, v2.Y)), math.Ceil(clip.Min.Y))
	maxX := math.Min(math.Ceil(max(v0.X, v1.X, v2.X)), math.Ceil(clip.Max.X))
	maxY := math.Min(math.Ceil(max(v0.Y, v1.Y, v2.Y)), math.Ceil(clip.Max.Y))
	if minX >= maxX || minY >= maxY {
		return it, nil
	}

	it.minX, it.minY = int(minX), int(minY)
	it.maxX, it.maxY = int(maxX), int(maxY)
	it.Reset()
	return it, nil
}

// Reset rewinds the iterator to the first candidate pixel.
func (it *TriangleIter) Reset() {
	it.x, it.y = it.minX, it.minY
}

// Next returns the next covered pixel. The second result is false once the
// triangle is exhausted.
func (it *TriangleIter) Next() (Pixel, bool) {
	for it.y < it.maxY {
		if it.x >= it.maxX {
			it.x = it.minX
			it.y++
			continue
		}

		x, y := it.x, it.y
		it.x++

		// Edge functions are evaluated from scratch at every pixel centre.
		// Stepping them incrementally accumulates rounding error, and the
		// fill rule relies on exact zeros along shared edges.
		p := Point{float64(x) + 0.5, float64(y) + 0.5}

		w0 := edge(it.v1, it.v2, p)
		if !covers(w0, it.topLeft[0]) {
			continue
		}
		w1 := edge(it.v2, it.v0, p)
		if !covers(w1, it.topLeft[1]) {
			continue
		}
		w2 := edge(it.v0, it.v1, p)
		if !covers(w2, it.topLeft[2]) {
			continue
		}

		// Weights are reported in the caller's vertex order.
		if it.swapped {
			w1, w2 = w2, w1
		}
		return Pixel{
			X:        x,
			Y:        y,
			Coverage: 1,
			B0:       w0 / it.area2,
			B1:       w1 / it.area2,
			B2:       w2 / it.area2,
		}, true
	}
	return Pixel{}, false
}

// All returns a sequence over every covered pixel. Each range over the
// sequence starts again from the first pixel, and stopping early leaves
// nothing to clean up.
func (it *TriangleIter) All() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		it.Reset()
		for {
			px, ok := it.Next()
			if !ok || !yield(px) {
				return
			}
		}
	}
}

// FillTriangle returns the pixels covered by triangle (v0, v1, v2) inside
// clip. A triangle with a non-finite vertex yields nothing; use
// NewTriangleIter to observe the error.
func FillTriangle(v0, v1, v2 Point, clip Rect) iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		it, err := NewTriangleIter(v0, v1, v2, clip)
		if err != nil {
			return
		}
		for px := range it.All() {
			if !yield(px) {
				return
			}
		}
	}
}

// edge returns twice the signed area of triangle (a, b, p): positive when p
// is to the left of a→b. Swapping a and b negates the result exactly, so a
// shared edge seen from both of its triangles agrees on which side a pixel
// centre lies.
func edge(a, b, p Point) float64 {
	return (a.X-p.X)*(b.Y-p.Y) - (a.Y-p.Y)*(b.X-p.X)
}

// isTopLeft reports whether edge a→b of a counter-clockwise triangle owns
// the pixel centres lying exactly on it: a horizontal edge running towards
// -X, or any edge running towards -Y.
func isTopLeft(a, b Point) bool {
	return (a.Y == b.Y && b.X < a.X) || b.Y < a.Y
}

func covers(w float64, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}
