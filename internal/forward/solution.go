// Package forward evaluates analytic test solutions on a grid, derives their
// source terms, and injects Gaussian measurement noise.
package forward

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
)

// Solution is a known u(x, y) together with its exact Laplacian.
type Solution interface {
	Name() string
	Value(x, y float64) float64
	Laplacian(x, y float64) float64
}

// SinSin is u = sin(πx)sin(πy), with Δu = -2π²u.
type SinSin struct{}

func (SinSin) Name() string { return "sinsin" }

func (SinSin) Value(x, y float64) float64 {
	return math.Sin(math.Pi*x) * math.Sin(math.Pi*y)
}

func (s SinSin) Laplacian(x, y float64) float64 {
	return -2 * math.Pi * math.Pi * s.Value(x, y)
}

// Bubble is u = x(1-x)y(1-y).
type Bubble struct{}

func (Bubble) Name() string { return "bubble" }

func (Bubble) Value(x, y float64) float64 {
	return x * (1 - x) * y * (1 - y)
}

func (Bubble) Laplacian(x, y float64) float64 {
	return -2 * (y*(1-y) + x*(1-x))
}

// Linear is u = x. It is harmonic.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Value(x, y float64) float64 { return x }

func (Linear) Laplacian(x, y float64) float64 { return 0 }

var solutions = map[string]func() Solution{
	"sinsin": func() Solution { return SinSin{} },
	"bubble": func() Solution { return Bubble{} },
	"linear": func() Solution { return Linear{} },
}

func Lookup(name string) (Solution, error) {
	fn, ok := solutions[name]
	if !ok {
		return nil, &numeric.ConfigError{Field: "solution", Value: name, Reason: fmt.Sprintf("available: %v", ListSolutions())}
	}
	return fn(), nil
}

func ListSolutions() []string {
	names := make([]string, 0, len(solutions))
	for name := range solutions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample returns the true field.
func Sample(g grid.Grid, s Solution) numeric.Field {
	return g.Sample(s.Value)
}

// Source returns f = Δu evaluated analytically, so the ground truth carries
// no discretization bias.
func Source(g grid.Grid, s Solution) numeric.Field {
	return g.Sample(s.Laplacian)
}
