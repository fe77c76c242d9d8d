package analysis

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
)

// AmplificationPoint is the mean ‖u‖/‖noise‖ over Draws solves at one
// noise level.
type AmplificationPoint struct {
	Level  float64
	Factor float64
	StdDev float64
	Draws  int
}

// LogSpace returns n values spaced evenly in log10 between lo and hi.
func LogSpace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}

// NoiseAmplification perturbs a zero right-hand side of length m at each
// level, solves, and records how much the solve scaled the noise.
func NoiseAmplification(solver inverse.Solver, m int, levels []float64, draws int, src rand.Source) ([]AmplificationPoint, error) {
	if draws < 1 {
		return nil, &numeric.ConfigError{Field: "draws", Value: draws, Reason: "must be >= 1"}
	}
	zero := numeric.NewField(m)
	points := make([]AmplificationPoint, 0, len(levels))
	acc := metrics.NewAccumulator("amplification")

	for _, level := range levels {
		if level <= 0 {
			return nil, &numeric.ConfigError{Field: "sweep", Value: level, Reason: "noise levels must be > 0"}
		}
		acc.Reset()
		for d := 0; d < draws; d++ {
			noise, err := forward.Perturb(zero, level, src)
			if err != nil {
				return nil, err
			}
			u, err := solver.Solve(noise)
			if err != nil {
				return nil, err
			}
			acc.Observe(u.Norm() / noise.Norm())
		}
		points = append(points, AmplificationPoint{
			Level:  level,
			Factor: acc.Value(),
			StdDev: acc.StdDev(),
			Draws:  acc.Count(),
		})
	}
	return points, nil
}
