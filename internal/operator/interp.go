package operator

import (
	"github.com/san-kum/invlap/internal/numeric"
)

// Interp1D maps two boundary values to the straight line between them on
// N equispaced points x_i = i/(N-1), endpoints included.
type Interp1D struct {
	n int
}

func NewInterp1D(n int) (*Interp1D, error) {
	if n < 2 {
		return nil, &numeric.ConfigError{Field: "n", Value: n, Reason: "need at least the two boundary points"}
	}
	return &Interp1D{n: n}, nil
}

func (p *Interp1D) Size() int {
	return p.n
}

func (p *Interp1D) Coords() []float64 {
	x := make([]float64, p.n)
	for i := range x {
		x[i] = float64(i) / float64(p.n-1)
	}
	return x
}

// Forward extracts the boundary measurements of u.
func (p *Interp1D) Forward(u numeric.Field) (left, right float64, err error) {
	if len(u) != p.n {
		return 0, 0, numeric.ErrDimensionMismatch
	}
	return u[0], u[p.n-1], nil
}

// Reconstruct returns left + (right-left)·x_i.
func (p *Interp1D) Reconstruct(left, right float64) numeric.Field {
	x := p.Coords()
	u := numeric.NewField(p.n)
	for i, xi := range x {
		u[i] = left + (right-left)*xi
	}
	return u
}

// Sample evaluates fn on the interpolation points.
func (p *Interp1D) Sample(fn func(x float64) float64) numeric.Field {
	x := p.Coords()
	u := numeric.NewField(p.n)
	for i, xi := range x {
		u[i] = fn(xi)
	}
	return u
}
