package chart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/invertedv/eph"
	ephtest "github.com/invertedv/eph/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T) *eph.DF {
	cols := map[string][]string{
		eph.ColYear:          {"2016", "2016", "2016", "2016"},
		eph.ColPeriod:        {"2016T1", "2016T1", "2016T2", "2016T2"},
		eph.ColGeographyName: {"Gran San Juan", "Partidos del GBA", "Gran San Juan", "Partidos del GBA"},
		eph.ColSexName:       {"Mujer", "Mujer", "Varón", "Mujer"},
		eph.StatActivity:     {"40", "45.5", "", "50"},
	}

	var list []*eph.Col
	for _, cn := range []string{eph.ColYear, eph.ColPeriod, eph.ColGeographyName, eph.ColSexName, eph.StatActivity} {
		v, e := eph.NewVector(cols[cn], eph.DTstring)
		require.Nil(t, e)
		list = append(list, eph.MustCol(cn, v))
	}

	df, e := eph.NewDF(list...)
	require.Nil(t, e)

	return df
}

func TestBuild(t *testing.T) {
	keys := []string{eph.ColYear, eph.ColPeriod, eph.ColGeographyName, eph.ColSexName}
	bars, e := Build(table(t), keys, eph.StatActivity, nil)
	require.Nil(t, e)

	assert.Equal(t, "PERIODO · SEXO", bars.XLabel)
	assert.Equal(t, []string{"2016T1 · Mujer", "2016T2 · Varón", "2016T2 · Mujer"}, bars.Categories)
	require.Len(t, bars.Series, 2)

	sj, gba := bars.Series[0], bars.Series[1]
	assert.Equal(t, "Gran San Juan", sj.Name)
	assert.Equal(t, "Partidos del GBA", gba.Name)

	assert.Equal(t, 40.0, *sj.Values[0])
	// blank in the table: undefined
	assert.Nil(t, sj.Values[1])
	// no such row: undefined
	assert.Nil(t, sj.Values[2])
	assert.Equal(t, 45.5, *gba.Values[0])
	assert.Nil(t, gba.Values[1])
	assert.Equal(t, 50.0, *gba.Values[2])

	_, e = Build(table(t), keys, eph.StatEmployment, nil)
	assert.ErrorIs(t, e, eph.ErrColumnNotFound)

	_, e = Build(table(t), []string{"nope"}, eph.StatActivity, nil)
	assert.ErrorIs(t, e, eph.ErrColumnNotFound)
}

func TestBuildOrder(t *testing.T) {
	cfg := eph.DefaultConfig()
	edu := eph.EducationOrder()
	age := cfg.AgeLabels

	cols := map[string][]string{
		eph.ColGeographyName: {"Gran San Juan", "Gran San Juan", "Gran San Juan", "Gran San Juan", "Gran San Juan"},
		eph.ColEducationName: {edu[3], edu[0], "otro", edu[2], edu[0]},
		eph.ColAgeBracket:    {age[0], age[2], age[0], age[1], age[0]},
		eph.StatActivity:     {"1", "2", "3", "4", "5"},
	}

	var list []*eph.Col
	for _, cn := range []string{eph.ColGeographyName, eph.ColEducationName, eph.ColAgeBracket, eph.StatActivity} {
		v, e := eph.NewVector(cols[cn], eph.DTstring)
		require.Nil(t, e)
		list = append(list, eph.MustCol(cn, v))
	}

	df, e := eph.NewDF(list...)
	require.Nil(t, e)

	// education by code; unknown values last
	bars, e := Build(df, []string{eph.ColGeographyName, eph.ColEducationName}, eph.StatActivity, CategoryOrder(cfg))
	require.Nil(t, e)
	// rows 2 and 5 share a category; the later row wins
	assert.Equal(t, []string{edu[0], edu[2], edu[3], "otro"}, bars.Categories)
	require.Len(t, bars.Series, 1)
	assert.Equal(t, 5.0, *bars.Series[0].Values[0])
	assert.Equal(t, 4.0, *bars.Series[0].Values[1])
	assert.Equal(t, 1.0, *bars.Series[0].Values[2])
	assert.Equal(t, 3.0, *bars.Series[0].Values[3])

	// age brackets youngest first, not alphabetical
	bars, e = Build(df, []string{eph.ColGeographyName, eph.ColAgeBracket}, eph.StatActivity, CategoryOrder(cfg))
	require.Nil(t, e)
	assert.Equal(t, age, bars.Categories)

	// both keys: education first, then age
	bars, e = Build(df, []string{eph.ColEducationName, eph.ColAgeBracket}, eph.StatActivity, CategoryOrder(cfg))
	require.Nil(t, e)
	assert.Equal(t, []string{edu[0] + categorySep + age[0], edu[0] + categorySep + age[2],
		edu[2] + categorySep + age[1], edu[3] + categorySep + age[0], "otro" + categorySep + age[0]}, bars.Categories)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Tasa actividad", Title(eph.StatActivity))
	assert.Equal(t, "Q1 ipcf", Title(eph.StatQ1))
	assert.Equal(t, "", Title(""))
}

func TestSaveFormats(t *testing.T) {
	bars, e := Build(table(t), []string{eph.ColPeriod, eph.ColGeographyName}, eph.StatActivity, nil)
	require.Nil(t, e)
	bars.Title = "test"

	dir := t.TempDir()
	for _, format := range []string{HTML, PNG} {
		fileName := filepath.Join(dir, "graficos", "tasas."+format)
		require.Nil(t, Save(bars, fileName, format))
		assert.FileExists(t, fileName)
	}

	assert.ErrorIs(t, Save(bars, filepath.Join(dir, "x.svg"), "svg"), eph.ErrUnsupportedFormat)
}

func TestRender(t *testing.T) {
	root := t.TempDir()
	ephtest.Scenario(t, filepath.Join(root, "data"))

	cfg := eph.DefaultConfig()
	cfg.InputRoot = filepath.Join(root, "data")
	cfg.OutputRoot = filepath.Join(root, "out")
	cfg.ChartFormat = PNG

	ctx := context.Background()

	_, e := Render(ctx, cfg)
	assert.NotNil(t, e)

	_, e = eph.Run(ctx, cfg)
	require.Nil(t, e)

	files, e := Render(ctx, cfg)
	require.Nil(t, e)
	// three rate charts and four income charts per breakdown
	assert.Len(t, files, 4*3+4*4)
	assert.Contains(t, files, filepath.Join(cfg.OutputRoot, "salidas", Dir, "tasas_tasa_actividad.png"))

	for _, f := range files {
		assert.FileExists(t, f)
	}
}
