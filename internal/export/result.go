package export

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/san-kum/invlap/internal/experiment"
)

type figure struct {
	name string
	draw func(path string) error
}

// Result writes the standard figures of an experiment kind into dir and
// returns the paths written. Figures whose data is missing are skipped.
func Result(dir string, res *experiment.Result, format string) ([]string, error) {
	if format == "" {
		format = "png"
	}

	var figs []figure
	heat := func(field, title string) {
		f, ok := res.Fields[field]
		if !ok || res.Grid.Dim != 2 {
			return
		}
		figs = append(figs, figure{field, func(path string) error {
			return Heatmap(path, res.Grid, f, title)
		}})
	}
	series := func(name string, x []float64, ys map[string][]float64, opts LineOptions) {
		for _, y := range ys {
			if len(y) > 0 {
				figs = append(figs, figure{name, func(path string) error {
					return Lines(path, x, ys, opts)
				}})
				return
			}
		}
	}
	byIndex := func(name, key string, opts LineOptions) {
		y := res.Series[key]
		series(name, Index(len(y)), map[string][]float64{key: y}, opts)
	}

	switch res.Kind {
	case "inverse":
		heat("true", "True solution")
		heat("direct", "Direct inversion")
		heat("regularized", "Tikhonov-regularized")
	case "conditioning":
		byIndex("singular_values", "singular_values", LineOptions{
			Title: "Singular values", XLabel: "index", YLabel: "sigma", LogY: true,
		})
		series("amplification", res.Series["noise_levels"], map[string][]float64{
			"amplification": res.Series["amplification"],
		}, LineOptions{
			Title: "Noise amplification", XLabel: "noise level", YLabel: "||u|| / ||noise||", LogX: true, LogY: true,
		})
	case "spectrum":
		byIndex("eigenvalues", "eigenvalues", LineOptions{
			Title: "Eigenvalues by magnitude", XLabel: "mode", YLabel: "|lambda|", LogY: true,
		})
		energy := map[string][]float64{"true": res.Series["true_energy"]}
		if e, ok := res.Series["error_energy"]; ok {
			energy["error"] = e
		}
		series("energy", Index(len(res.Series["true_energy"])), energy, LineOptions{
			Title: "Spectral energy", XLabel: "mode", YLabel: "normalized energy", LogY: true,
		})
		heat("mode_1", "Lowest mode")
	case "boundary":
		series("boundary", res.Series["x"], map[string][]float64{
			"true":          res.Fields["true"],
			"reconstructed": res.Fields["reconstructed"],
		}, LineOptions{Title: "Boundary interpolation", XLabel: "x", YLabel: "u"})
	case "lambda-sweep":
		series("lambda_sweep", res.Series["lambdas"], map[string][]float64{
			"error":    res.Series["errors"],
			"residual": res.Series["residuals"],
		}, LineOptions{Title: "Regularization sweep", XLabel: "lambda", YLabel: "relative", LogX: true, LogY: true})
		heat("best", "Best regularized reconstruction")
	case "ensemble":
		for name, y := range res.Series {
			if name == "seed" {
				continue
			}
			series("ensemble_"+name, res.Series["seed"], map[string][]float64{name: y}, LineOptions{
				Title: name + " across seeds", XLabel: "seed", YLabel: name,
			})
		}
	default:
		return nil, fmt.Errorf("no figures for experiment kind %q", res.Kind)
	}

	written := make([]string, 0, len(figs))
	for _, fig := range figs {
		path := filepath.Join(dir, fig.name+"."+format)
		if err := fig.draw(path); err != nil {
			if errors.Is(err, ErrNoData) {
				continue
			}
			return written, fmt.Errorf("%s: %w", fig.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
