package raster

import "iter"

// Line returns the pixels of the line from (x0, y0) to (x1, y1), both
// endpoints included, using Bresenham's algorithm.
//
// Ties on the decision variable are broken so that a line and its reverse
// visit the same pixels.
func Line(x0, y0, x1, y1 int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		dx, incX := x1-x0, 1
		if dx < 0 {
			dx, incX = -dx, -1
		}
		dy, incY := y1-y0, 1
		if dy < 0 {
			dy, incY = -dy, -1
		}

		// Step along the major axis; d decides when to step the minor one.
		xMajor := dx > dy
		major, minor := dy, dx
		if xMajor {
			major, minor = dx, dy
		}
		d := 2*minor - major
		incE := 2 * minor
		incNE := 2*minor - 2*major

		x, y := x0, y0
		for range major + 1 {
			if !yield(x, y) {
				return
			}

			inc := incY
			if xMajor {
				inc = incX
			}
			if inc > 0 && d <= 0 || inc < 0 && d < 0 {
				d += incE
				if xMajor {
					x += incX
				} else {
					y += incY
				}
				continue
			}
			d += incNE
			x += incX
			y += incY
		}
	}
}
