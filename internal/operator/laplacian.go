package operator

import (
	"fmt"

	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
)

// Stencil selects the diagonal of the 1D second-difference matrix T.
type Stencil string

const (
	// StencilKron uses T = tridiag(1, -4, 1), so the 2D diagonal is -8/h².
	StencilKron Stencil = "kron"
	// StencilStandard uses T = tridiag(1, -2, 1), the textbook five-point
	// Laplacian in 2D.
	StencilStandard Stencil = "standard"
)

func ParseStencil(name string) (Stencil, error) {
	switch Stencil(name) {
	case "", StencilKron:
		return StencilKron, nil
	case StencilStandard:
		return StencilStandard, nil
	}
	return "", &numeric.ConfigError{Field: "stencil", Value: name, Reason: fmt.Sprintf("want %q or %q", StencilKron, StencilStandard)}
}

func (s Stencil) diagonal() float64 {
	if s == StencilStandard {
		return -2
	}
	return -4
}

// Build returns the Dirichlet Laplacian for g: T/h² in 1D and
// (I⊗T + T⊗I)/h² in 2D.
func Build(g grid.Grid, st Stencil) (*Operator, error) {
	if _, err := grid.New(g.N, g.Dim); err != nil {
		return nil, err
	}
	if _, err := ParseStencil(string(st)); err != nil {
		return nil, err
	}

	h := g.H()
	t := Tridiag(g.N, 1, st.diagonal())
	if g.Dim == 1 {
		return t.Scale(1 / (h * h)), nil
	}

	id := Identity(g.N)
	sum, err := Add(Kron(id, t), Kron(t, id))
	if err != nil {
		return nil, err
	}
	return sum.Scale(1 / (h * h)), nil
}
