package experiment

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/invlap/internal/config"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
)

// Ensemble repeats one experiment over consecutive seeds and summarizes
// the spread of its scalars.
type Ensemble struct {
	registry *Registry
	runs     int
	workers  int
}

func NewEnsemble(r *Registry, runs, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{registry: r, runs: runs, workers: workers}
}

// Run executes cfg with seeds cfg.Seed, cfg.Seed+1, ... and returns a
// result of kind "ensemble": per-run scalars as series, plus their mean
// and standard deviation.
func (e *Ensemble) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if e.runs < 1 {
		return nil, &numeric.ConfigError{Field: "runs", Value: e.runs, Reason: "must be >= 1"}
	}

	results := make([]*Result, e.runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range results {
		g.Go(func() error {
			runCfg := cfg.Clone()
			runCfg.Seed = cfg.Seed + int64(i)
			res, err := e.registry.Run(ctx, runCfg)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(results[0].Scalars))
	for name := range results[0].Scalars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := newResult("ensemble", results[0].Grid)
	out.Scalars["runs"] = float64(e.runs)
	seeds := make([]float64, e.runs)
	for i := range seeds {
		seeds[i] = float64(cfg.Seed + int64(i))
	}
	out.Series["seed"] = seeds

	acc := metrics.NewAccumulator("")
	for _, name := range names {
		acc.Reset()
		values := make([]float64, e.runs)
		for i, res := range results {
			values[i] = res.Scalars[name]
			acc.Observe(values[i])
		}
		out.Series[name] = values
		out.Scalars[name+"_mean"] = acc.Value()
		out.Scalars[name+"_std"] = acc.StdDev()
	}
	return out, nil
}
