// Package grid describes the uniform interior grid of the unit interval or
// unit square on which fields are sampled.
package grid

import (
	"github.com/san-kum/invlap/internal/numeric"
)

// Grid is an N-point (1D) or N×N-point (2D) interior mesh with spacing
// h = 1/(N+1). 2D points are flattened row-major.
type Grid struct {
	N   int
	Dim int
}

func New(n, dim int) (Grid, error) {
	if n < 2 {
		return Grid{}, &numeric.ConfigError{Field: "n", Value: n, Reason: "grid resolution must be >= 2"}
	}
	if dim != 1 && dim != 2 {
		return Grid{}, &numeric.ConfigError{Field: "dim", Value: dim, Reason: "dimension must be 1 or 2"}
	}
	return Grid{N: n, Dim: dim}, nil
}

func (g Grid) H() float64 {
	return 1.0 / float64(g.N+1)
}

// Size returns the number of unknowns M.
func (g Grid) Size() int {
	if g.Dim == 1 {
		return g.N
	}
	return g.N * g.N
}

// Coords returns the 1D interior coordinates h, 2h, ..., 1-h.
func (g Grid) Coords() []float64 {
	h := g.H()
	x := make([]float64, g.N)
	for i := range x {
		x[i] = h * float64(i+1)
	}
	return x
}

// Point maps a flat index to its coordinates. For 2D, index r*N+c is the
// meshgrid point (x[c], x[r]); y is 0 in 1D.
func (g Grid) Point(k int) (x, y float64) {
	h := g.H()
	if g.Dim == 1 {
		return h * float64(k+1), 0
	}
	r, c := k/g.N, k%g.N
	return h * float64(c+1), h * float64(r+1)
}

// Index is the inverse of Point for 2D grids.
func (g Grid) Index(r, c int) int {
	return r*g.N + c
}

// Reshape unflattens a field into rows. 1D fields become a single row.
func (g Grid) Reshape(f numeric.Field) ([][]float64, error) {
	if len(f) != g.Size() {
		return nil, numeric.ErrDimensionMismatch
	}
	if g.Dim == 1 {
		return [][]float64{f.Clone()}, nil
	}
	rows := make([][]float64, g.N)
	for r := range rows {
		rows[r] = make([]float64, g.N)
		copy(rows[r], f[r*g.N:(r+1)*g.N])
	}
	return rows, nil
}

// Sample evaluates fn at every grid point in flat order.
func (g Grid) Sample(fn func(x, y float64) float64) numeric.Field {
	f := numeric.NewField(g.Size())
	for k := range f {
		x, y := g.Point(k)
		f[k] = fn(x, y)
	}
	return f
}
