package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*flag.FlagSet, *options) {
	var opts options
	fs := newFlagSet(&opts, flag.ContinueOnError)
	require.Nil(t, fs.Parse(args))

	return fs, &opts
}

func TestLoadConfigFlagsBeforeValidation(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "eph.yaml")
	require.Nil(t, os.WriteFile(fileName, []byte("first_year: 2030\n"), 0o644))

	// the file alone leaves last_year before first_year
	fs, opts := parse(t, "-config", fileName)
	_, e := loadConfig(fs, opts)
	assert.NotNil(t, e)

	fs, opts = parse(t, "-config", fileName, "-to", "2031", "-chart-format", "PNG")
	cfg, e := loadConfig(fs, opts)
	require.Nil(t, e)
	assert.Equal(t, 2030, cfg.FirstYear)
	assert.Equal(t, 2031, cfg.LastYear)
	assert.Equal(t, "png", cfg.ChartFormat)

	// a flag can also break a valid configuration
	fs, opts = parse(t, "-workers", "0")
	_, e = loadConfig(fs, opts)
	assert.NotNil(t, e)
}

func TestApplyFlagsOnlyVisited(t *testing.T) {
	fs, opts := parse(t, "-output", "salida")
	cfg, e := loadConfig(fs, opts)
	require.Nil(t, e)

	assert.Equal(t, "salida", cfg.OutputRoot)
	// -from was not given, so the default first year stays
	assert.Equal(t, 2016, cfg.FirstYear)
}
