package experiment

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/config"
	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
	"github.com/san-kum/invlap/internal/optim"
)

// Result is everything a run produced, as plain numbers.
type Result struct {
	Kind    string                   `json:"kind"`
	Grid    grid.Grid                `json:"grid"`
	Scalars map[string]float64       `json:"scalars"`
	Series  map[string][]float64     `json:"series"`
	Fields  map[string]numeric.Field `json:"fields"`
}

func newResult(kind string, g grid.Grid) *Result {
	return &Result{
		Kind:    kind,
		Grid:    g,
		Scalars: make(map[string]float64),
		Series:  make(map[string][]float64),
		Fields:  make(map[string]numeric.Field),
	}
}

// Streams used to split one seed between independent consumers.
const (
	streamNoise uint64 = iota + 1
	streamSpectral
)

func source(cfg *config.Config, stream uint64) rand.Source {
	return rand.NewPCG(uint64(cfg.Seed), stream)
}

func buildProblem(cfg *config.Config) (*forward.Problem, error) {
	g, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	st, err := operator.ParseStencil(cfg.Stencil)
	if err != nil {
		return nil, err
	}
	op, err := operator.Build(g, st)
	if err != nil {
		return nil, err
	}
	sol, err := forward.Lookup(cfg.Solution)
	if err != nil {
		return nil, err
	}
	return forward.NewProblem(g, op, sol, cfg.NoiseLevel, source(cfg, streamNoise))
}

func runInverse(ctx context.Context, cfg *config.Config) (*Result, error) {
	p, err := buildProblem(cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep, err := inverse.Reconstruct(p, cfg.LambdaReg)
	if err != nil {
		return nil, err
	}

	res := newResult("inverse", p.Grid)
	res.Scalars["noise_level"] = cfg.NoiseLevel
	res.Scalars["lambda"] = rep.Lambda
	res.Scalars["direct_error"] = rep.DirectError
	res.Scalars["regularized_error"] = rep.RegularizedError
	res.Scalars["direct_residual"] = rep.DirectResidual
	res.Scalars["regularized_residual"] = rep.RegularizedResidual
	res.Fields["true"] = p.True
	res.Fields["noisy_source"] = p.Noisy
	res.Fields["direct"] = rep.Direct
	res.Fields["regularized"] = rep.Regularized
	return res, nil
}

func runConditioning(ctx context.Context, cfg *config.Config) (*Result, error) {
	p, err := buildProblem(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SpectralOptions()
	if err != nil {
		return nil, err
	}
	opts.Src = source(cfg, streamSpectral)

	cond, sv, err := analysis.ConditionEstimate(p.Operator, cfg.NumSV, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	direct, err := inverse.NewDirect(p.Operator)
	if err != nil {
		return nil, err
	}
	points, err := analysis.NoiseAmplification(direct, cfg.Size(), cfg.Sweep.Values(), cfg.Draws, source(cfg, streamNoise))
	if err != nil {
		return nil, err
	}

	res := newResult("conditioning", p.Grid)
	res.Scalars["condition"] = cond
	res.Scalars["sigma_min"] = sv.Min()
	res.Scalars["sigma_max"] = sv.Max()
	res.Scalars["draws"] = float64(cfg.Draws)
	if sv.Full {
		res.Scalars["full_svd"] = 1
	} else {
		res.Scalars["full_svd"] = 0
	}
	res.Series["singular_values"] = sv.Values

	levels := make([]float64, len(points))
	factors := make([]float64, len(points))
	spread := make([]float64, len(points))
	for i, pt := range points {
		levels[i] = pt.Level
		factors[i] = pt.Factor
		spread[i] = pt.StdDev
	}
	res.Series["noise_levels"] = levels
	res.Series["amplification"] = factors
	res.Series["amplification_std"] = spread
	return res, nil
}

func runSpectrum(ctx context.Context, cfg *config.Config) (*Result, error) {
	p, err := buildProblem(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SpectralOptions()
	if err != nil {
		return nil, err
	}
	opts.Src = source(cfg, streamSpectral)

	modes, err := analysis.Eigen(p.Operator, cfg.NumModes, analysis.Smallest, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	truth, err := analysis.SpectralEnergy(modes, p.True)
	if err != nil {
		return nil, err
	}

	direct, err := inverse.NewDirect(p.Operator)
	if err != nil {
		return nil, err
	}
	uhat, err := direct.Solve(p.Noisy)
	if err != nil {
		return nil, err
	}
	recErr, err := uhat.Sub(p.True)
	if err != nil {
		return nil, err
	}

	res := newResult("spectrum", p.Grid)
	res.Scalars["num_modes"] = float64(modes.Len())
	res.Scalars["iterations"] = float64(modes.Iterations)
	res.Scalars["lambda_min"] = modes.Values[0]
	res.Scalars["lambda_max"] = modes.Values[modes.Len()-1]
	res.Scalars["true_captured"] = truth.Captured
	res.Scalars["true_high_share"] = truth.HighFrequencyShare(modes.Len() / 2)
	res.Series["eigenvalues"] = modes.Values
	res.Series["true_energy"] = truth.Normalized

	// A noise-free solve has no error to decompose.
	if errEnergy, err := analysis.SpectralEnergy(modes, recErr); err == nil {
		res.Scalars["error_captured"] = errEnergy.Captured
		res.Scalars["error_high_share"] = errEnergy.HighFrequencyShare(modes.Len() / 2)
		res.Series["error_energy"] = errEnergy.Normalized
	}

	res.Fields["true"] = p.True
	res.Fields["direct"] = uhat
	res.Fields["mode_1"] = mat.Col(nil, 0, modes.Vectors)
	return res, nil
}

// runBoundary recovers the straight line through the configured end values
// from its two, possibly noisy, boundary measurements.
func runBoundary(ctx context.Context, cfg *config.Config) (*Result, error) {
	interp, err := operator.NewInterp1D(cfg.N)
	if err != nil {
		return nil, err
	}
	truth := interp.Reconstruct(cfg.Boundary.Left, cfg.Boundary.Right)
	left, right, err := interp.Forward(truth)
	if err != nil {
		return nil, err
	}
	measured, err := forward.Perturb(numeric.Field{left, right}, cfg.NoiseLevel, source(cfg, streamNoise))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recon := interp.Reconstruct(measured[0], measured[1])
	relErr, err := metrics.RelativeError(recon, truth)
	if err != nil {
		return nil, err
	}

	g, err := grid.New(cfg.N, 1)
	if err != nil {
		return nil, err
	}
	res := newResult("boundary", g)
	res.Scalars["noise_level"] = cfg.NoiseLevel
	res.Scalars["left"] = left
	res.Scalars["right"] = right
	res.Scalars["measured_left"] = measured[0]
	res.Scalars["measured_right"] = measured[1]
	res.Scalars["relative_error"] = relErr
	res.Series["x"] = interp.Coords()
	res.Fields["true"] = truth
	res.Fields["reconstructed"] = recon
	return res, nil
}

func runLambdaSweep(ctx context.Context, cfg *config.Config) (*Result, error) {
	p, err := buildProblem(cfg)
	if err != nil {
		return nil, err
	}
	search, err := optim.NewLambdaSearch(cfg.Lambdas.Values(), cfg.Workers).Search(ctx, p)
	if err != nil {
		return nil, err
	}
	best, err := inverse.NewRegularized(p.Operator, search.Best)
	if err != nil {
		return nil, err
	}
	u, err := best.Solve(p.Noisy)
	if err != nil {
		return nil, err
	}

	res := newResult("lambda-sweep", p.Grid)
	res.Scalars["noise_level"] = cfg.NoiseLevel
	res.Scalars["best_lambda"] = search.Best
	res.Scalars["best_error"] = search.BestError
	res.Series["lambdas"] = search.Lambdas
	res.Series["errors"] = search.Errors
	res.Series["residuals"] = search.Residuals
	res.Fields["true"] = p.True
	res.Fields["best"] = u
	return res, nil
}
