package chart

import (
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 6 * vg.Inch
	barWidth  = vg.Length(10)
)

// savePNG draws bars with gonum/plot. Undefined values are drawn as zero-height bars.
func savePNG(bars *Bars, fileName string) error {
	p := plot.New()
	p.Title.Text = bars.Title
	p.X.Label.Text = bars.XLabel
	p.Y.Label.Text = bars.YLabel
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = text.XRight
	p.Legend.Top = true

	n := len(bars.Series)
	for ind, s := range bars.Series {
		vals := make(plotter.Values, len(s.Values))
		for c, v := range s.Values {
			if v != nil {
				vals[c] = *v
			}
		}

		bc, e := plotter.NewBarChart(vals, barWidth)
		if e != nil {
			return e
		}

		bc.LineStyle.Width = vg.Length(0)
		bc.Color = plotutil.Color(ind)
		bc.Offset = vg.Length(float64(ind)-float64(n-1)/2) * barWidth

		p.Add(bc)
		p.Legend.Add(s.Name, bc)
	}

	p.NominalX(bars.Categories...)

	if e := os.MkdirAll(filepath.Dir(fileName), 0o755); e != nil {
		return e
	}

	return p.Save(pngWidth, pngHeight, fileName)
}
