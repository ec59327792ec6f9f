// Package raster turns 2D primitives into the integer pixels they cover.
//
// Triangles are filled with the half-space (edge function) algorithm and a
// top-left tie-break rule, so triangles that share an edge never leave a gap
// between them and never cover the same pixel twice.
package raster

import "math"

// Point is a position in screen space.
type Point struct {
	X, Y float64
}

// Pt creates a new Point.
func Pt(x, y float64) Point {
	return Point{x, y}
}

// Sub returns the vector from b to a.
func (a Point) Sub(b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

// Cross returns the perp-dot product of a and b.
func (a Point) Cross(b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (a Point) finite() bool {
	return !math.IsNaN(a.X) && !math.IsInf(a.X, 0) &&
		!math.IsNaN(a.Y) && !math.IsInf(a.Y, 0)
}

// Rect is an axis-aligned clip region. Min is inclusive, Max exclusive.
type Rect struct {
	Min, Max Point
}

// R creates a Rect from its corner coordinates.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: Point{x0, y0}, Max: Point{x1, y1}}
}

// Empty reports whether the rectangle contains no pixel.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Pixel is one covered pixel of a primitive.
type Pixel struct {
	X, Y int

	// Coverage is the fraction of the pixel covered by the primitive.
	// Only whole pixels are emitted, so it is always 1.
	Coverage float64

	// B0, B1 and B2 are the barycentric weights of the triangle's vertices
	// at the pixel centre. They sum to 1.
	B0, B1, B2 float64
}
