package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Accumulator collects repeated scalar observations, e.g. one amplification
// factor per noise draw.
type Accumulator struct {
	name    string
	samples []float64
}

func NewAccumulator(name string) *Accumulator {
	return &Accumulator{name: name}
}

func (a *Accumulator) Name() string {
	return a.name
}

func (a *Accumulator) Observe(v float64) {
	a.samples = append(a.samples, v)
}

func (a *Accumulator) Count() int {
	return len(a.samples)
}

// Value returns the sample mean, or NaN with no samples.
func (a *Accumulator) Value() float64 {
	if len(a.samples) == 0 {
		return math.NaN()
	}
	return stat.Mean(a.samples, nil)
}

// StdDev returns the unbiased sample standard deviation; zero for fewer
// than two samples.
func (a *Accumulator) StdDev() float64 {
	if len(a.samples) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(a.samples, nil)
	return std
}

func (a *Accumulator) Reset() {
	a.samples = a.samples[:0]
}
