package eph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Reducer computes the statistics Names over the rows of one group. A nil result is an undefined statistic.
type Reducer struct {
	Names []string
	Fn    func(df *DF, rows []int) ([]*float64, error)
}

// Statistic families.
const (
	Rates  = "rates"
	Income = "income"
)

// ReducerFor returns the reducer of a statistic family.
func ReducerFor(statistic string) (Reducer, error) {
	switch statistic {
	case Rates:
		return LaborRates(), nil
	case Income:
		return IncomeSummary(), nil
	default:
		return Reducer{}, fmt.Errorf("%w: %s", ErrUnknownStatistic, statistic)
	}
}

// GroupBy reduces df by the key tuple keys. The result holds the key columns followed by the statistic
// columns, one row per key tuple observed in df, sorted by keys. Rows with a missing key are not in any group.
func GroupBy(df *DF, keys []string, red Reducer) (*DF, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys in GroupBy")
	}

	var keyCols []*Col
	for _, k := range keys {
		col := df.Column(k)
		if col == nil {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, k)
		}

		keyCols = append(keyCols, col)
	}

	const sep = "\x00"
	groups := make(map[string][]int)
	var order []string
	for row := 0; row < df.RowCount(); row++ {
		var parts []string
		complete := true
		for _, col := range keyCols {
			s, ok := col.ElementString(row)
			if !ok {
				complete = false
				break
			}

			parts = append(parts, s)
		}

		if !complete {
			continue
		}

		key := strings.Join(parts, sep)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], row)
	}

	var firstRows []int
	for _, key := range order {
		firstRows = append(firstRows, groups[key][0])
	}

	out := &DF{}
	for _, col := range keyCols {
		out.cols = append(out.cols, MustCol(col.Name(), col.Vector.Permute(firstRows)))
	}

	statVecs := make([]*Vector, len(red.Names))
	for ind := range statVecs {
		statVecs[ind] = MakeVector(DTfloat, len(order))
	}

	for g, key := range order {
		vals, e := red.Fn(df, groups[key])
		if e != nil {
			return nil, e
		}

		if len(vals) != len(red.Names) {
			return nil, fmt.Errorf("reducer returned %d values for %d statistics", len(vals), len(red.Names))
		}

		for ind, val := range vals {
			if val == nil {
				statVecs[ind].SetMissing(g)
				continue
			}

			statVecs[ind].SetFloat(*val, g)
		}
	}

	for ind, name := range red.Names {
		if e := out.AppendColumn(MustCol(name, statVecs[ind]), false); e != nil {
			return nil, e
		}
	}

	if e := out.Sort(keys...); e != nil {
		return nil, e
	}

	return out, nil
}

// *********** Reducers ***********

// LaborRates computes the activity, employment and unemployment rates, in percent, weighted by PONDERA.
// With W the total weight, A the weight of the employed and unemployed, E of the employed and U of the
// unemployed: activity = 100A/W, employment = 100E/W, unemployment = 100U/A. A rate with a zero
// denominator is undefined. Missing weights are skipped.
func LaborRates() Reducer {
	return Reducer{
		Names: []string{StatActivity, StatEmployment, StatUnemployment},
		Fn: func(df *DF, rows []int) ([]*float64, error) {
			weight, status := df.Column(ColWeight), df.Column(ColStatus)
			if weight == nil || status == nil {
				return nil, fmt.Errorf("%w: rates need %s and %s", ErrColumnNotFound, ColWeight, ColStatus)
			}

			var total, employed, unemployed float64
			for _, row := range rows {
				w := weight.ElementFloat(row)
				if math.IsNaN(w) {
					continue
				}

				total += w
				if st, ok := status.ElementInt(row); ok {
					switch st {
					case StatusEmployed:
						employed += w
					case StatusUnemployed:
						unemployed += w
					}
				}
			}

			active := employed + unemployed

			return []*float64{ratio(active, total), ratio(employed, total), ratio(unemployed, active)}, nil
		},
	}
}

// IncomeSummary computes the mean, median and quartiles of IPCF over the rows where it is present.
func IncomeSummary() Reducer {
	return Reducer{
		Names: []string{StatMean, StatMedian, StatQ1, StatQ3},
		Fn: func(df *DF, rows []int) ([]*float64, error) {
			ipcf := df.Column(ColIPCF)
			if ipcf == nil {
				return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, ColIPCF)
			}

			var x []float64
			for _, row := range rows {
				if v := ipcf.ElementFloat(row); !math.IsNaN(v) {
					x = append(x, v)
				}
			}

			if len(x) == 0 {
				return []*float64{nil, nil, nil, nil}, nil
			}

			sort.Float64s(x)
			mean := stat.Mean(x, nil)
			median, q1, q3 := Quantile(0.5, x), Quantile(0.25, x), Quantile(0.75, x)

			return []*float64{&mean, &median, &q1, &q3}, nil
		},
	}
}

// Quantile returns the p quantile of the sorted values x, interpolating linearly between the order
// statistics at h = (n-1)p (Hyndman and Fan definition 7).
func Quantile(p float64, x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}

	h := float64(n-1) * p
	lo := int(h)
	if lo >= n-1 {
		return x[n-1]
	}

	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}

func ratio(num, den float64) *float64 {
	if den <= 0 {
		return nil
	}

	r := 100 * num / den

	return &r
}
