package raster

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

var bigClip = R(-1000, -1000, 1000, 1000)

type xy struct{ x, y int }

func coords(seq func(func(Pixel) bool)) []xy {
	var out []xy
	for px := range seq {
		out = append(out, xy{px.X, px.Y})
	}
	return out
}

func TestFillTriangleScanOrder(t *testing.T) {
	got := coords(FillTriangle(Pt(1, 2), Pt(5, 2), Pt(7, 4), bigClip))
	want := []xy{{2, 2}, {3, 2}, {4, 2}, {5, 3}}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFillTriangleDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		v0, v1, v2 Point
	}{
		{"point", Pt(4.5, 7.5), Pt(4.5, 7.5), Pt(4.5, 7.5)},
		{"collinear", Pt(0, 0), Pt(5, 5), Pt(10, 10)},
		{"repeated vertex", Pt(0, 0), Pt(10, 0), Pt(10, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := coords(FillTriangle(tc.v0, tc.v1, tc.v2, bigClip)); len(got) != 0 {
				t.Errorf("got %v, want no pixels", got)
			}
		})
	}
}

func TestFillTriangleWindingIndependent(t *testing.T) {
	a, b, c := Pt(10.3, 3.7), Pt(50.9, 20.1), Pt(3.2, 40.6)
	ccw := coords(FillTriangle(a, b, c, bigClip))
	cw := coords(FillTriangle(a, c, b, bigClip))
	if len(ccw) == 0 {
		t.Fatal("triangle produced no pixels")
	}
	if !slices.Equal(ccw, cw) {
		t.Errorf("winding changed coverage: %d vs %d pixels", len(ccw), len(cw))
	}
}

func TestSharedEdgePartition(t *testing.T) {
	a := coords(FillTriangle(Pt(100, 100), Pt(200, 100), Pt(190, 150), bigClip))
	b := coords(FillTriangle(Pt(200, 100), Pt(400, 150), Pt(190, 150), bigClip))
	if len(a) == 0 || len(b) == 0 {
		t.Fatalf("empty triangle: %d, %d pixels", len(a), len(b))
	}

	seen := make(map[xy]bool, len(a))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		if seen[p] {
			t.Errorf("pixel %v covered by both triangles", p)
		}
	}

	// The same quad split along its other diagonal covers the same pixels.
	c := coords(FillTriangle(Pt(100, 100), Pt(200, 100), Pt(400, 150), bigClip))
	d := coords(FillTriangle(Pt(100, 100), Pt(400, 150), Pt(190, 150), bigClip))
	union := func(ps ...[]xy) map[xy]int {
		m := make(map[xy]int)
		for _, s := range ps {
			for _, p := range s {
				m[p]++
			}
		}
		return m
	}
	ab := union(a, b)
	cd := union(c, d)
	if len(ab) != len(cd) {
		t.Fatalf("union sizes differ: %d vs %d", len(ab), len(cd))
	}
	for p, n := range cd {
		if n != 1 {
			t.Errorf("pixel %v covered %d times by the second split", p, n)
		}
		if ab[p] != 1 {
			t.Errorf("pixel %v missing from the first split", p)
		}
	}
}

// A jittered grid of quads, each split into two triangles with mixed
// windings, must cover every pixel of the grid exactly once.
func TestMeshCoversEveryPixelOnce(t *testing.T) {
	const (
		width, height = 64, 48
		cols, rows    = 8, 6
	)
	rng := rand.New(rand.NewPCG(1, 2))
	jitter := []float64{-2, -1.5, -0.5, 0, 0.5, 1, 1.5}

	var grid [rows + 1][cols + 1]Point
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			x := float64(i * width / cols)
			y := float64(j * height / rows)
			if i > 0 && i < cols {
				x += jitter[rng.IntN(len(jitter))]
			}
			if j > 0 && j < rows {
				y += jitter[rng.IntN(len(jitter))]
			}
			grid[j][i] = Pt(x, y)
		}
	}

	counts := make(map[xy]int)
	add := func(v0, v1, v2 Point) {
		for px := range FillTriangle(v0, v1, v2, bigClip) {
			counts[xy{px.X, px.Y}]++
		}
	}
	for j := range rows {
		for i := range cols {
			a, b := grid[j][i], grid[j][i+1]
			c, d := grid[j+1][i+1], grid[j+1][i]
			if (i+j)%2 == 0 {
				add(a, b, d)
				add(c, b, d) // clockwise
			} else {
				add(a, b, c)
				add(a, c, d)
			}
		}
	}

	if len(counts) != width*height {
		t.Errorf("covered %d pixels, want %d", len(counts), width*height)
	}
	for p, n := range counts {
		if n != 1 {
			t.Errorf("pixel %v covered %d times", p, n)
		}
		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			t.Errorf("pixel %v outside the grid", p)
		}
	}
}

func TestBarycentricWeights(t *testing.T) {
	tris := [][3]Point{
		{Pt(10.3, 3.7), Pt(50.9, 20.1), Pt(3.2, 40.6)},
		{Pt(10.3, 3.7), Pt(3.2, 40.6), Pt(50.9, 20.1)},
		{Pt(100, 100), Pt(200, 100), Pt(190, 150)},
		{Pt(-20, -20), Pt(300, 10), Pt(5, 250)},
	}

	for i, tri := range tris {
		n := 0
		for px := range FillTriangle(tri[0], tri[1], tri[2], bigClip) {
			n++
			sum := px.B0 + px.B1 + px.B2
			if math.Abs(sum-1) > 1e-9 {
				t.Fatalf("triangle %d pixel (%d,%d): weights sum to %v", i, px.X, px.Y, sum)
			}
			if px.B0 < 0 || px.B1 < 0 || px.B2 < 0 {
				t.Fatalf("triangle %d pixel (%d,%d): negative weight %v %v %v", i, px.X, px.Y, px.B0, px.B1, px.B2)
			}
			if px.Coverage != 1 {
				t.Fatalf("coverage = %v, want 1", px.Coverage)
			}

			// The weights reconstruct the pixel centre in the caller's vertex order.
			cx := px.B0*tri[0].X + px.B1*tri[1].X + px.B2*tri[2].X
			cy := px.B0*tri[0].Y + px.B1*tri[1].Y + px.B2*tri[2].Y
			if math.Abs(cx-(float64(px.X)+0.5)) > 1e-6 || math.Abs(cy-(float64(px.Y)+0.5)) > 1e-6 {
				t.Fatalf("triangle %d pixel (%d,%d): weights give centre (%v,%v)", i, px.X, px.Y, cx, cy)
			}
		}
		if n == 0 {
			t.Errorf("triangle %d produced no pixels", i)
		}
	}
}

func TestFillTriangleClip(t *testing.T) {
	got := coords(FillTriangle(Pt(0, 0), Pt(10, 0), Pt(0, 10), R(0, 0, 4, 4)))
	if len(got) != 16 {
		t.Errorf("got %d pixels, want the full 4x4 clip", len(got))
	}
	for _, p := range got {
		if p.x < 0 || p.x >= 4 || p.y < 0 || p.y >= 4 {
			t.Errorf("pixel %v outside clip", p)
		}
	}

	if got := coords(FillTriangle(Pt(20, 20), Pt(30, 20), Pt(20, 30), R(0, 0, 10, 10))); len(got) != 0 {
		t.Errorf("triangle outside clip produced %v", got)
	}
	if got := coords(FillTriangle(Pt(0, 0), Pt(10, 0), Pt(0, 10), R(5, 5, 5, 5))); len(got) != 0 {
		t.Errorf("empty clip produced %v", got)
	}
}

func TestTriangleIterRestart(t *testing.T) {
	it, err := NewTriangleIter(Pt(10.3, 3.7), Pt(50.9, 20.1), Pt(3.2, 40.6), bigClip)
	if err != nil {
		t.Fatal(err)
	}

	first := coords(it.All())

	// Abandon a pass part way through.
	n := 0
	for range it.All() {
		n++
		if n == 5 {
			break
		}
	}

	second := coords(it.All())
	if !slices.Equal(first, second) {
		t.Errorf("second pass differs: %d vs %d pixels", len(first), len(second))
	}

	// Next after exhaustion keeps reporting the end.
	if _, ok := it.Next(); ok {
		t.Error("Next() after exhaustion returned a pixel")
	}
}

func TestTriangleIterNonFinite(t *testing.T) {
	bad := []Point{
		Pt(math.NaN(), 0),
		Pt(0, math.Inf(1)),
		Pt(math.Inf(-1), 0),
	}
	for _, p := range bad {
		_, err := NewTriangleIter(Pt(0, 0), Pt(10, 0), p, bigClip)
		if !errors.Is(err, ErrNonFinite) {
			t.Errorf("vertex %v: err = %v, want ErrNonFinite", p, err)
		}
		if got := coords(FillTriangle(Pt(0, 0), Pt(10, 0), p, bigClip)); len(got) != 0 {
			t.Errorf("vertex %v: FillTriangle yielded %v", p, got)
		}
	}
}

func TestTriangleIterZeroValue(t *testing.T) {
	var it TriangleIter
	if _, ok := it.Next(); ok {
		t.Error("zero TriangleIter yielded a pixel")
	}
}

func BenchmarkFillTriangle(b *testing.B) {
	v0, v1, v2 := Pt(10.3, 3.7), Pt(190.9, 60.1), Pt(33.2, 180.6)
	clip := R(0, 0, 200, 200)

	for b.Loop() {
		for range FillTriangle(v0, v1, v2, clip) {
		}
	}
}
