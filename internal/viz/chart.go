package viz

import (
	"errors"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/invlap/internal/experiment"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
)

var ErrNoData = errors.New("viz: nothing to plot")

// logSeries are drawn as log10 of their magnitude.
var logSeries = map[string]bool{
	"singular_values":   true,
	"amplification":     true,
	"amplification_std": true,
	"noise_levels":      true,
	"eigenvalues":       true,
	"true_energy":       true,
	"error_energy":      true,
	"lambdas":           true,
	"errors":            true,
	"residuals":         true,
}

func IsLogSeries(name string) bool {
	return logSeries[name]
}

// Log10 returns log10|v| for every non-zero entry; zeros are dropped.
func Log10(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, math.Log10(math.Abs(v)))
	}
	return out
}

type ChartOptions struct {
	Width  int
	Height int
	Log    bool
}

func Chart(values []float64, caption string, opts ChartOptions) (string, error) {
	data := values
	if opts.Log {
		data = Log10(values)
		caption += " (log10)"
	}
	if len(data) == 0 {
		return "", ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 10
	}
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	), nil
}

// SeriesChart draws a named series of a result with its default scale.
func SeriesChart(res *experiment.Result, name string, width, height int) (string, error) {
	values, ok := res.Series[name]
	if !ok {
		return "", ErrNoData
	}
	return Chart(values, name, ChartOptions{Width: width, Height: height, Log: IsLogSeries(name)})
}

// Profile returns the middle row of a 2D field, or the field itself in 1D.
func Profile(g grid.Grid, f numeric.Field) ([]float64, error) {
	if g.Dim == 1 {
		return f, nil
	}
	rows, err := g.Reshape(f)
	if err != nil {
		return nil, err
	}
	return rows[g.N/2], nil
}
