package eph

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"
)

// Normalize coerces the survey columns to numbers, filters the records and adds the label columns.
// raw is not modified. The filters run in this order:
//   - AGLOMERADO is one of the configured geographies;
//   - ESTADO is not the under-working-age code;
//   - if incomeOnly, IPCF is present and > 0.
//
// Values that do not parse become missing. Codes with no label get a missing label; the row is kept.
func Normalize(ctx context.Context, raw *DF, cfg *Config, incomeOnly bool) (*DF, error) {
	n := raw.RowCount()

	df := &DF{}
	for _, cn := range Columns {
		dt := DTfloat
		if has(cn, codeColumns) {
			dt = DTint
		}

		var v *Vector
		switch col := raw.Column(cn); {
		case col == nil:
			v = MissingVector(dt, n)
		case cfg.DecimalComma:
			v = col.CoerceDecimalComma(dt)
		default:
			v = col.Coerce(dt)
		}

		if e := df.AppendColumn(MustCol(cn, v), false); e != nil {
			return nil, e
		}
	}

	keep := make([]bool, n)
	geo, status, ipcf := df.Column(ColGeography), df.Column(ColStatus), df.Column(ColIPCF)
	kept := 0
	for row := 0; row < n; row++ {
		code, ok := geo.ElementInt(row)
		if !ok {
			continue
		}

		if _, ok = cfg.Geographies[code]; !ok {
			continue
		}

		if st, okSt := status.ElementInt(row); okSt && st == StatusUnderAge {
			continue
		}

		if incomeOnly && !(ipcf.ElementFloat(row) > 0) {
			continue
		}

		keep[row] = true
		kept++
	}

	var e error
	if df, e = df.Where(keep); e != nil {
		return nil, e
	}

	zerolog.Ctx(ctx).Info().Int("records", n).Int("kept", kept).Bool("incomeOnly", incomeOnly).Msg("records filtered")

	if e = addLabels(df, cfg); e != nil {
		return nil, e
	}

	return df, nil
}

// addLabels appends AGLOMERADO_NOM, PERIODO, SEXO, GRUPO_EDAD and NIVEL_ED_NOMBRE.
func addLabels(df *DF, cfg *Config) error {
	n := df.RowCount()

	labels := []struct {
		name  string
		label func(row int) (string, bool)
	}{
		{ColGeographyName, codeLabel(df.Column(ColGeography), cfg.Geographies)},
		{ColPeriod, func(row int) (string, bool) {
			year, okY := df.Column(ColYear).ElementInt(row)
			quarter, okQ := df.Column(ColQuarter).ElementInt(row)
			if !okY || !okQ {
				return "", false
			}

			return PeriodLabel(year, quarter), true
		}},
		{ColSexName, codeLabel(df.Column(ColSex), SexNames)},
		{ColAgeBracket, func(row int) (string, bool) {
			return AgeBracket(df.Column(ColAge).ElementFloat(row), cfg.AgeBreaks, cfg.AgeLabels)
		}},
		{ColEducationName, codeLabel(df.Column(ColEducation), EducationNames)},
	}

	for _, l := range labels {
		v := MakeVector(DTstring, n)
		for row := 0; row < n; row++ {
			s, ok := l.label(row)
			if !ok {
				v.SetMissing(row)
				continue
			}

			v.SetString(s, row)
		}

		if e := df.AppendColumn(MustCol(l.name, v), true); e != nil {
			return fmt.Errorf("adding %s: %w", l.name, e)
		}
	}

	return nil
}

func codeLabel(col *Col, names map[int]string) func(row int) (string, bool) {
	return func(row int) (string, bool) {
		code, ok := col.ElementInt(row)
		if !ok {
			return "", false
		}

		name, ok := names[code]

		return name, ok
	}
}

// PeriodLabel renders a survey wave, e.g. 2016T2.
func PeriodLabel(year, quarter int) string {
	return strconv.Itoa(year) + "T" + strconv.Itoa(quarter)
}

// AgeBracket returns the label of the bracket holding age. Brackets are half-open: an age equal to a
// break belongs to the bracket above it. labels has one more entry than breaks. A NaN age has no bracket.
func AgeBracket(age float64, breaks []float64, labels []string) (string, bool) {
	if math.IsNaN(age) || len(labels) != len(breaks)+1 {
		return "", false
	}

	for ind, brk := range breaks {
		if age < brk {
			return labels[ind], true
		}
	}

	return labels[len(labels)-1], true
}
