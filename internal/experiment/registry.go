package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/invlap/internal/config"
)

// Runner executes one pipeline against a validated configuration.
type Runner func(ctx context.Context, cfg *config.Config) (*Result, error)

type Registry struct {
	runners map[string]Runner
}

func NewRegistry() *Registry {
	r := &Registry{
		runners: make(map[string]Runner),
	}

	r.runners["inverse"] = runInverse
	r.runners["conditioning"] = runConditioning
	r.runners["spectrum"] = runSpectrum
	r.runners["boundary"] = runBoundary
	r.runners["lambda-sweep"] = runLambdaSweep

	return r
}

// Register adds or replaces a runner.
func (r *Registry) Register(name string, fn Runner) {
	r.runners[name] = fn
}

func (r *Registry) Get(name string) (Runner, error) {
	fn, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("unknown experiment: %s", name)
	}
	return fn, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run validates cfg and dispatches on cfg.Experiment.
func (r *Registry) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	fn, err := r.Get(cfg.Experiment)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Experiment, err)
	}
	return fn(ctx, cfg)
}
