package export

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
)

// fieldGrid adapts a flattened 2D field to plotter.GridXYZ. Columns run
// along x and rows along y, matching the row-major layout of the grid.
type fieldGrid struct {
	g      grid.Grid
	f      numeric.Field
	coords []float64
}

func (fg fieldGrid) Dims() (c, r int) { return fg.g.N, fg.g.N }
func (fg fieldGrid) Z(c, r int) float64 { return fg.f[fg.g.Index(r, c)] }
func (fg fieldGrid) X(c int) float64 { return fg.coords[c] }
func (fg fieldGrid) Y(r int) float64 { return fg.coords[r] }

// Heatmap renders a 2D field over the unit square.
func Heatmap(path string, g grid.Grid, f numeric.Field, title string) error {
	if g.Dim != 2 {
		return &numeric.ConfigError{Field: "dim", Value: g.Dim, Reason: "heatmaps need a 2D grid"}
	}
	if len(f) != g.Size() {
		return numeric.ErrDimensionMismatch
	}
	if len(f) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	h := plotter.NewHeatMap(fieldGrid{g: g, f: f, coords: g.Coords()}, palette.Heat(64, 1))
	h.Min, h.Max = floats.Min(f), floats.Max(f)
	if h.Min == h.Max {
		h.Min--
		h.Max++
	}
	p.Add(h)
	p.X.Padding = 0
	p.Y.Padding = 0

	return p.Save(figureHeight, figureHeight, path)
}
