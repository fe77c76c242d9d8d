package optim

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
)

// LambdaSearch scans a grid of Tikhonov weights for the one that
// reconstructs a problem best.
type LambdaSearch struct {
	lambdas []float64
	workers int
}

func NewLambdaSearch(lambdas []float64, workers int) *LambdaSearch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &LambdaSearch{lambdas: lambdas, workers: workers}
}

type SearchResult struct {
	Lambdas   []float64
	Errors    []float64
	Residuals []float64
	Best      float64
	BestError float64
}

// Search solves the regularized problem for every λ. Each λ factorizes its
// own normal matrix; the problem itself is only read.
func (s *LambdaSearch) Search(ctx context.Context, p *forward.Problem) (*SearchResult, error) {
	if len(s.lambdas) == 0 {
		return nil, &numeric.ConfigError{Field: "lambdas", Value: 0, Reason: "need at least one lambda"}
	}
	for _, l := range s.lambdas {
		if l < 0 {
			return nil, &numeric.ConfigError{Field: "lambdas", Value: l, Reason: "must be >= 0"}
		}
	}

	res := &SearchResult{
		Lambdas:   append([]float64(nil), s.lambdas...),
		Errors:    make([]float64, len(s.lambdas)),
		Residuals: make([]float64, len(s.lambdas)),
		BestError: math.Inf(1),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, lambda := range s.lambdas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			solver, err := inverse.NewRegularized(p.Operator, lambda)
			if err != nil {
				return err
			}
			u, err := solver.Solve(p.Noisy)
			if err != nil {
				return err
			}
			if res.Errors[i], err = metrics.RelativeError(u, p.True); err != nil {
				return err
			}
			res.Residuals[i], err = metrics.Residual(p.Operator, u, p.Noisy)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, e := range res.Errors {
		if e < res.BestError {
			res.BestError = e
			res.Best = res.Lambdas[i]
		}
	}
	return res, nil
}
