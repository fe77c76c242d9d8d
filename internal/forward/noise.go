package forward

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

// Perturb returns f plus i.i.d. N(0, level²) noise, one draw per entry.
// A zero level returns an exact copy without touching src.
func Perturb(f numeric.Field, level float64, src rand.Source) (numeric.Field, error) {
	if level < 0 {
		return nil, &numeric.ConfigError{Field: "noise_level", Value: level, Reason: "must be >= 0"}
	}
	noisy := f.Clone()
	if level == 0 {
		return noisy, nil
	}
	if src == nil {
		return nil, &numeric.ConfigError{Field: "noise_level", Value: level, Reason: "noise requires a random source"}
	}
	dist := distuv.Normal{Mu: 0, Sigma: level, Src: src}
	for i := range noisy {
		noisy[i] += dist.Rand()
	}
	return noisy, nil
}

// Problem is one forward solve: the operator, the true field, its source
// term and the noisy measurement of it.
type Problem struct {
	Grid     grid.Grid
	Operator *operator.Operator
	Solution Solution
	True     numeric.Field
	Source   numeric.Field
	Noisy    numeric.Field
	Noise    float64
}

func NewProblem(g grid.Grid, op *operator.Operator, s Solution, level float64, src rand.Source) (*Problem, error) {
	if r, _ := op.Dims(); r != g.Size() {
		return nil, numeric.ErrDimensionMismatch
	}
	truth := Sample(g, s)
	f := Source(g, s)
	noisy, err := Perturb(f, level, src)
	if err != nil {
		return nil, err
	}
	return &Problem{
		Grid:     g,
		Operator: op,
		Solution: s,
		True:     truth,
		Source:   f,
		Noisy:    noisy,
		Noise:    level,
	}, nil
}
