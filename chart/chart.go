// Package chart draws grouped bar charts of the aggregate tables written by eph.Run.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/invertedv/eph"
	"github.com/rs/zerolog"
)

// Dir is the directory, within each output directory, that holds the charts.
const Dir = "graficos"

const (
	HTML = "html"
	PNG  = "png"
)

// categorySep joins the key values that make up a bar category.
const categorySep = " · "

// Series is the bars of one geography, one value per category. A nil value is undefined.
type Series struct {
	Name   string
	Values []*float64
}

// Bars is the data of one chart.
type Bars struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
}

// Render reads back every output table of cfg and draws one chart per statistic. It returns the files written.
func Render(ctx context.Context, cfg *eph.Config) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var files []string
	for _, out := range cfg.Outputs {
		red, e := eph.ReducerFor(out.Statistic)
		if e != nil {
			return files, e
		}

		fileName := out.FileName(cfg.OutputRoot)
		if _, e := os.Stat(fileName); e != nil {
			return files, fmt.Errorf("table %s: %w", out.Name, e)
		}

		f := eph.NewOutputFiles()
		df, e := f.Read(fileName)
		if e != nil {
			return files, fmt.Errorf("table %s: %w", out.Name, e)
		}

		for _, stat := range red.Names {
			bars, e := Build(df, out.Keys, stat, CategoryOrder(cfg))
			if e != nil {
				return files, fmt.Errorf("table %s: %w", out.Name, e)
			}

			bars.Title = Title(stat) + " - " + out.Name

			chartFile := filepath.Join(cfg.OutputRoot, out.Dir, Dir, out.Name+"_"+stat+"."+cfg.ChartFormat)
			if e := Save(bars, chartFile, cfg.ChartFormat); e != nil {
				return files, fmt.Errorf("chart %s: %w", chartFile, e)
			}

			logger.Debug().Str("file", chartFile).Msg("chart written")
			files = append(files, chartFile)
		}
	}

	logger.Info().Int("charts", len(files)).Msg("charts written")

	return files, nil
}

// Build arranges the column stat of a table keyed by keys into bars. Categories are the key values other than
// the geography and year; there is one series per geography. Values of a key listed in order sort by their
// position there, other values follow in order of first appearance.
func Build(df *eph.DF, keys []string, stat string, order map[string][]string) (*Bars, error) {
	statCol := df.Column(stat)
	if statCol == nil {
		return nil, fmt.Errorf("%w: %s", eph.ErrColumnNotFound, stat)
	}

	values := statCol.Coerce(eph.DTfloat)

	var catCols []*eph.Col
	var catNames []string
	var ranks []map[string]int
	for _, k := range keys {
		if k == eph.ColGeographyName || k == eph.ColYear {
			continue
		}

		col := df.Column(k)
		if col == nil {
			return nil, fmt.Errorf("%w: %s", eph.ErrColumnNotFound, k)
		}

		catCols = append(catCols, col)
		catNames = append(catNames, k)

		rank := make(map[string]int)
		for ind, v := range order[k] {
			rank[v] = ind
		}

		ranks = append(ranks, rank)
	}

	geo := df.Column(eph.ColGeographyName)

	bars := &Bars{XLabel: strings.Join(catNames, categorySep), YLabel: Title(stat)}
	catIndex := make(map[string]int)
	seriesIndex := make(map[string]int)
	type point struct {
		series, cat int
		val         *float64
	}

	var points []point
	var catRanks [][]int
	for row := 0; row < df.RowCount(); row++ {
		var parts []string
		var catRank []int
		for c, col := range catCols {
			s, _ := col.ElementString(row)
			parts = append(parts, s)

			r, ok := ranks[c][s]
			if !ok {
				r = len(ranks[c])
			}

			catRank = append(catRank, r)
		}

		cat := strings.Join(parts, categorySep)
		ci, ok := catIndex[cat]
		if !ok {
			ci = len(bars.Categories)
			catIndex[cat] = ci
			bars.Categories = append(bars.Categories, cat)
			catRanks = append(catRanks, catRank)
		}

		name := stat
		if geo != nil {
			name, _ = geo.ElementString(row)
		}

		si, ok := seriesIndex[name]
		if !ok {
			si = len(bars.Series)
			seriesIndex[name] = si
			bars.Series = append(bars.Series, Series{Name: name})
		}

		var val *float64
		if v := values.ElementFloat(row); !values.Missing(row) {
			val = &v
		}

		points = append(points, point{series: si, cat: ci, val: val})
	}

	// perm[i] is the category shown at position i
	perm := make([]int, len(bars.Categories))
	for ind := range perm {
		perm[ind] = ind
	}

	sort.SliceStable(perm, func(i, j int) bool {
		return slices.Compare(catRanks[perm[i]], catRanks[perm[j]]) < 0
	})

	pos := make([]int, len(perm))
	cats := make([]string, len(perm))
	for ind, ci := range perm {
		pos[ci] = ind
		cats[ind] = bars.Categories[ci]
	}

	bars.Categories = cats

	for ind := range bars.Series {
		bars.Series[ind].Values = make([]*float64, len(bars.Categories))
	}

	for _, p := range points {
		bars.Series[p.series].Values[pos[p.cat]] = p.val
	}

	return bars, nil
}

// CategoryOrder gives the display order of the key values that have a natural one: education levels by
// code and age brackets youngest first.
func CategoryOrder(cfg *eph.Config) map[string][]string {
	return map[string][]string{
		eph.ColEducationName: eph.EducationOrder(),
		eph.ColAgeBracket:    cfg.AgeLabels,
	}
}

// Save draws bars to fileName in format (html or png).
func Save(bars *Bars, fileName, format string) error {
	switch format {
	case HTML:
		return saveHTML(bars, fileName)
	case PNG:
		return savePNG(bars, fileName)
	default:
		return fmt.Errorf("%w: chart format %s", eph.ErrUnsupportedFormat, format)
	}
}

func saveHTML(bars *Bars, fileName string) error {
	p := eph.NewPlot(eph.WithTitle(bars.Title), eph.WithXlabel(bars.XLabel), eph.WithYlabel(bars.YLabel),
		eph.WithLegend(true), eph.WithGroupedBars())

	for _, s := range bars.Series {
		if e := p.PlotBars(bars.Categories, s.Values, s.Name); e != nil {
			return e
		}
	}

	return p.Save(fileName)
}

// Title renders a statistic name for display: tasa_actividad becomes "Tasa actividad".
func Title(stat string) string {
	s := strings.ReplaceAll(stat, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
