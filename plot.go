package eph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"
)

// Plot is an interactive plotly figure, saved as a self-contained HTML page.
type Plot struct {
	Fig *grob.Fig
	Lay *grob.Layout
}

type Opt func(plot *Plot) *Plot

func NewPlot(opt ...Opt) *Plot {
	fig := &grob.Fig{}
	lay := &grob.Layout{}
	fig.Layout = lay
	p := &Plot{Fig: fig, Lay: lay}
	for _, o := range opt {
		o(p)
	}

	return p
}

func WithWidth(w float64) Opt {
	if w < 0.0 {
		panic(fmt.Errorf("negative width"))
	}

	return func(p *Plot) *Plot {
		p.Lay.Width = w
		return p
	}
}

func WithHeight(h float64) Opt {
	if h < 0.0 {
		panic(fmt.Errorf("negative height"))
	}

	return func(p *Plot) *Plot {
		p.Lay.Height = h
		return p
	}
}

func WithTitle(title string) Opt {
	return func(p *Plot) *Plot { p.Lay.Title = &grob.LayoutTitle{Text: title}; return p }
}

func WithLegend(show bool) Opt {
	return func(p *Plot) *Plot {
		if show {
			p.Lay.Showlegend = grob.True
		} else {
			p.Lay.Showlegend = grob.False
		}

		return p
	}
}

// WithGroupedBars places the bars of each series side by side.
func WithGroupedBars() Opt {
	return func(p *Plot) *Plot {
		p.Lay.Barmode = grob.BarBarmodeGroup
		return p
	}
}

func WithXlabel(label string) Opt {
	return func(p *Plot) *Plot {
		p.xAxis().Title.Text = label
		return p
	}
}

func WithYlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Yaxis == nil {
			p.Lay.Yaxis = &grob.LayoutYaxis{}
		}

		p.Lay.Yaxis.Title = &grob.LayoutYaxisTitle{Text: label}
		return p
	}
}

// WithSubtitle adds a line below the x label.
func WithSubtitle(subTitle string) Opt {
	return func(p *Plot) *Plot {
		xAxis := p.xAxis()

		xLabel, _ := xAxis.Title.Text.(string)
		if ind := strings.Index(xLabel, "<br>"); ind >= 0 {
			xLabel = xLabel[:ind]
		}

		if xLabel != "" {
			xLabel += "<br>"
		}

		xAxis.Title.Text = xLabel + subTitle
		return p
	}
}

// PlotBars adds a bar series. y[i] is the height of the bar at category x[i]; a nil y[i] leaves a gap.
func (p *Plot) PlotBars(x []string, y []*float64, seriesName string) error {
	if len(x) != len(y) {
		return fmt.Errorf("bar plot needs one value per category: %d categories, %d values", len(x), len(y))
	}

	vals := make([]any, len(y))
	for ind, v := range y {
		if v != nil {
			vals[ind] = *v
		}
	}

	p.Fig.AddTraces(&grob.Bar{Type: grob.TraceTypeBar, Name: seriesName, X: x, Y: vals})

	return nil
}

// Save writes the figure as an HTML page.
func (p *Plot) Save(fileName string) error {
	if e := os.MkdirAll(filepath.Dir(fileName), 0o755); e != nil {
		return e
	}

	offline.ToHtml(p.Fig, fileName)

	if _, e := os.Stat(fileName); e != nil {
		return fmt.Errorf("plot not saved: %w", e)
	}

	return nil
}

func (p *Plot) xAxis() *grob.LayoutXaxis {
	if p.Lay.Xaxis == nil {
		p.Lay.Xaxis = &grob.LayoutXaxis{}
	}

	if p.Lay.Xaxis.Title == nil {
		p.Lay.Xaxis.Title = &grob.LayoutXaxisTitle{Text: ""}
	}

	return p.Lay.Xaxis
}
