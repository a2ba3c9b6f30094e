package eph

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"testing"

	ephtest "github.com/invertedv/eph/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, people []ephtest.Person, incomeOnly bool) *DF {
	df, e := Normalize(context.Background(), rawDF(t, people), DefaultConfig(), incomeOnly)
	require.Nil(t, e)

	return df
}

func TestLaborRates(t *testing.T) {
	people := append(ephtest.RatesPeople(),
		ephtest.Person{Year: 2016, Quarter: 2, Geography: 33, Weight: "5", Sex: "1", Age: "40", Education: "4", Status: "3"})

	out, e := GroupBy(normalized(t, people, false), []string{ColGeographyName, ColPeriod}, LaborRates())
	require.Nil(t, e)

	assert.Equal(t, []string{ColGeographyName, ColPeriod, StatActivity, StatEmployment, StatUnemployment}, out.ColumnNames())
	require.Equal(t, 2, out.RowCount())

	assert.Equal(t, []any{"Gran San Juan", "2016T2", 50.0, 25.0, 50.0}, out.Row(0))
	// nobody active: unemployment is undefined
	assert.Equal(t, []any{"Partidos del GBA", "2016T2", 0.0, 0.0, nil}, out.Row(1))
}

func TestLaborRatesMissing(t *testing.T) {
	people := ephtest.RatesPeople()
	// no weight: out of every sum
	people = append(people, ephtest.Person{Year: 2016, Quarter: 2, Geography: 27, Weight: "", Status: "1"})
	// no status: counts toward the total weight only
	people = append(people, ephtest.Person{Year: 2016, Quarter: 2, Geography: 27, Weight: "40", Status: ""})

	out, e := GroupBy(normalized(t, people, false), []string{ColGeographyName}, LaborRates())
	require.Nil(t, e)
	require.Equal(t, 1, out.RowCount())
	assert.Equal(t, []any{"Gran San Juan", 25.0, 12.5, 50.0}, out.Row(0))
}

func TestIncomeSummary(t *testing.T) {
	out, e := GroupBy(normalized(t, ephtest.RatesPeople(), true), []string{ColGeographyName, ColPeriod}, IncomeSummary())
	require.Nil(t, e)

	assert.Equal(t, []string{ColGeographyName, ColPeriod, StatMean, StatMedian, StatQ1, StatQ3}, out.ColumnNames())
	require.Equal(t, 1, out.RowCount())
	assert.Equal(t, []any{"Gran San Juan", "2016T2", 250.0, 250.0, 175.0, 325.0}, out.Row(0))
}

func TestQuantile(t *testing.T) {
	x := []float64{100, 200, 300, 400}
	assert.Equal(t, 100.0, Quantile(0, x))
	assert.Equal(t, 175.0, Quantile(0.25, x))
	assert.Equal(t, 250.0, Quantile(0.5, x))
	assert.Equal(t, 325.0, Quantile(0.75, x))
	assert.Equal(t, 400.0, Quantile(1, x))
	assert.Equal(t, 7.0, Quantile(0.5, []float64{7}))
	assert.Equal(t, 0.0, Quantile(0.5, nil))
}

func TestQuantileMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		x := make([]float64, 1+rng.Intn(50))
		for ind := range x {
			x[ind] = float64(rng.Intn(20)) * 1000
		}

		sort.Float64s(x)
		q1, med, q3 := Quantile(0.25, x), Quantile(0.5, x), Quantile(0.75, x)
		assert.LessOrEqual(t, x[0], q1)
		assert.LessOrEqual(t, q1, med)
		assert.LessOrEqual(t, med, q3)
		assert.LessOrEqual(t, q3, x[len(x)-1])
	}
}

// randomPeople draws n records over both areas, two years and every status.
func randomPeople(rng *rand.Rand, n int) []ephtest.Person {
	var people []ephtest.Person
	for ind := 0; ind < n; ind++ {
		people = append(people, ephtest.Person{
			Year:      2016 + rng.Intn(2),
			Quarter:   1 + rng.Intn(4),
			Geography: []int{27, 33, 2}[rng.Intn(3)],
			Weight:    strconv.Itoa(1 + rng.Intn(300)),
			Sex:       strconv.Itoa(1 + rng.Intn(2)),
			Age:       strconv.Itoa(rng.Intn(90)),
			Education: strconv.Itoa(1 + rng.Intn(7)),
			Status:    strconv.Itoa(rng.Intn(5)),
			IPCF:      strconv.Itoa(rng.Intn(5) * 10000),
		})
	}

	return people
}

func TestGroupByProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	people := randomPeople(rng, 500)

	for _, out := range DefaultOutputs() {
		df := normalized(t, people, out.Statistic == Income)

		red, e := ReducerFor(out.Statistic)
		require.Nil(t, e)

		res, e := GroupBy(df, out.Keys, red)
		require.Nil(t, e)

		// one row per observed key tuple, no more
		observed := make(map[string]bool)
		for row := 0; row < df.RowCount(); row++ {
			if k, ok := keyOf(df, out.Keys, row); ok {
				observed[k] = true
			}
		}

		seen := make(map[string]bool)
		for row := 0; row < res.RowCount(); row++ {
			k, ok := keyOf(res, out.Keys, row)
			require.True(t, ok)
			assert.False(t, seen[k], "duplicate key %s in %s", k, out.Name)
			seen[k] = true
		}

		assert.Equal(t, observed, seen, out.Name)

		for row := 0; row < res.RowCount(); row++ {
			if out.Statistic == Rates {
				for _, stat := range red.Names {
					v := res.Column(stat).ElementFloat(row)
					if !math.IsNaN(v) {
						assert.GreaterOrEqual(t, v, 0.0)
						assert.LessOrEqual(t, v, 100.0)
					}
				}

				continue
			}

			q1, med, q3 := res.Column(StatQ1).ElementFloat(row), res.Column(StatMedian).ElementFloat(row),
				res.Column(StatQ3).ElementFloat(row)
			assert.LessOrEqual(t, q1, med)
			assert.LessOrEqual(t, med, q3)
			assert.Greater(t, q1, 0.0)
		}
	}
}

func keyOf(df *DF, keys []string, row int) (string, bool) {
	var k string
	for _, cn := range keys {
		s, ok := df.Column(cn).ElementString(row)
		if !ok {
			return "", false
		}

		k += s + "|"
	}

	return k, true
}

func TestGroupByErrors(t *testing.T) {
	df := normalized(t, ephtest.RatesPeople(), false)

	_, e := GroupBy(df, nil, LaborRates())
	assert.NotNil(t, e)

	_, e = GroupBy(df, []string{"nope"}, LaborRates())
	assert.ErrorIs(t, e, ErrColumnNotFound)

	_, e = ReducerFor("variance")
	assert.ErrorIs(t, e, ErrUnknownStatistic)
}

func TestGroupByIdempotent(t *testing.T) {
	df := normalized(t, randomPeople(rand.New(rand.NewSource(1)), 200), false)
	keys := []string{ColYear, ColPeriod, ColGeographyName, ColSexName}

	a, e := GroupBy(df, keys, LaborRates())
	require.Nil(t, e)
	b, e := GroupBy(df, keys, LaborRates())
	require.Nil(t, e)

	require.Equal(t, a.RowCount(), b.RowCount())
	for row := 0; row < a.RowCount(); row++ {
		assert.Equal(t, a.Row(row), b.Row(row))
	}

	// sorted by the keys
	for row := 1; row < a.RowCount(); row++ {
		y0, _ := a.Column(ColYear).ElementInt(row - 1)
		y1, _ := a.Column(ColYear).ElementInt(row)
		assert.LessOrEqual(t, y0, y1)
	}
}
