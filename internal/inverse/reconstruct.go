package inverse

import (
	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
)

// Report compares the direct and regularized reconstructions of one
// problem.
type Report struct {
	Lambda              float64
	Direct              numeric.Field
	Regularized         numeric.Field
	DirectError         float64
	RegularizedError    float64
	DirectResidual      float64
	RegularizedResidual float64
}

// Reconstruct runs both inversions on p.Noisy and scores them against p.True.
func Reconstruct(p *forward.Problem, lambda float64) (*Report, error) {
	direct, err := NewDirect(p.Operator)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegularized(p.Operator, lambda)
	if err != nil {
		return nil, err
	}

	rep := &Report{Lambda: lambda}
	if rep.Direct, err = direct.Solve(p.Noisy); err != nil {
		return nil, err
	}
	if rep.Regularized, err = reg.Solve(p.Noisy); err != nil {
		return nil, err
	}

	if rep.DirectError, err = metrics.RelativeError(rep.Direct, p.True); err != nil {
		return nil, err
	}
	if rep.RegularizedError, err = metrics.RelativeError(rep.Regularized, p.True); err != nil {
		return nil, err
	}
	if rep.DirectResidual, err = metrics.Residual(p.Operator, rep.Direct, p.Noisy); err != nil {
		return nil, err
	}
	if rep.RegularizedResidual, err = metrics.Residual(p.Operator, rep.Regularized, p.Noisy); err != nil {
		return nil, err
	}
	return rep, nil
}
