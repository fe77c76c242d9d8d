package export

import (
	"errors"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("export: nothing to plot")

const (
	figureWidth  = 6 * vg.Inch
	figureHeight = 4 * vg.Inch
)

type LineOptions struct {
	Title  string
	XLabel string
	YLabel string
	LogX   bool
	LogY   bool
}

// Lines draws each named series against x. Points that cannot sit on a
// log axis are dropped. The output format follows the extension of path.
func Lines(path string, x []float64, series map[string][]float64, opts LineOptions) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	if opts.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if opts.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Add(plotter.NewGrid())

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	drawn := 0
	for i, name := range names {
		pts := points(x, series[name], opts.LogX, opts.LogY)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if len(names) > 1 {
			p.Legend.Add(name, line)
		}
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}

	if opts.LogX {
		widenLog(&p.X)
	}
	if opts.LogY {
		widenLog(&p.Y)
	}
	return p.Save(figureWidth, figureHeight, path)
}

func points(x, y []float64, logX, logY bool) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if (logX && x[i] <= 0) || (logY && y[i] <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}

// widenLog opens up a degenerate log axis by a decade on each side.
func widenLog(a *plot.Axis) {
	if a.Min == a.Max {
		a.Min /= 10
		a.Max *= 10
	}
}

// Index returns 1..n for plotting a series against its position.
func Index(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return x
}
