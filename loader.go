package eph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// Discover lists the survey files under root/<year>/ that match pattern, in year order and, within a year,
// in file-name order. A missing year directory or a year with no matching files is logged and skipped.
// ErrNoInputFound is returned if no file is found for any year.
func Discover(ctx context.Context, root string, years []int, pattern string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var files []string
	for _, year := range years {
		yearFiles, e := discoverYear(root, year, pattern)
		switch {
		case errors.Is(e, ErrMissingYearDirectory), errors.Is(e, ErrNoMatchingFiles):
			logger.Warn().Err(e).Int("year", year).Msg("year skipped")
			continue
		case e != nil:
			return nil, e
		}

		logger.Debug().Int("year", year).Strs("files", yearFiles).Msg("files found")
		files = append(files, yearFiles...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s, years %v, pattern %s", ErrNoInputFound, root, years, pattern)
	}

	return files, nil
}

func discoverYear(root string, year int, pattern string) ([]string, error) {
	dir := filepath.Join(root, strconv.Itoa(year))

	info, e := os.Stat(dir)
	if errors.Is(e, os.ErrNotExist) || (e == nil && !info.IsDir()) {
		return nil, fmt.Errorf("%w: %s", ErrMissingYearDirectory, dir)
	}

	if e != nil {
		return nil, e
	}

	var matches []string
	if matches, e = filepath.Glob(filepath.Join(dir, pattern)); e != nil {
		return nil, e
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoMatchingFiles, pattern, dir)
	}

	sort.Strings(matches)

	return matches, nil
}

// LoadFiles reads each file with f, keeping the columns in keep, and concatenates the results in order.
func LoadFiles(ctx context.Context, f *Files, files []string, keep ...string) (*DF, error) {
	logger := zerolog.Ctx(ctx)

	all := &DF{}
	for _, fileName := range files {
		if e := ctx.Err(); e != nil {
			return nil, e
		}

		df, e := f.Read(fileName, keep...)
		if e != nil {
			return nil, e
		}

		logger.Info().Str("file", filepath.Base(fileName)).Int("rows", df.RowCount()).
			Strs("columns", df.ColumnNames()).Msg("file read")

		if all, e = all.AppendDF(df); e != nil {
			return nil, fmt.Errorf("%s: %w", fileName, e)
		}
	}

	return all, nil
}

// Load discovers and reads the survey files for the configured years. It fails with ErrNoInputFound if
// no file is found or the files hold no records.
func Load(ctx context.Context, cfg *Config) (df *DF, files []string, err error) {
	if files, err = Discover(ctx, cfg.InputRoot, cfg.Years(), cfg.Pattern); err != nil {
		return nil, nil, err
	}

	f := NewInputFiles()
	f.Encoding = cfg.InputEncoding
	if df, err = LoadFiles(ctx, f, files, Columns...); err != nil {
		return nil, nil, err
	}

	if df.RowCount() == 0 {
		return nil, files, fmt.Errorf("%w: %d files hold no records", ErrNoInputFound, len(files))
	}

	zerolog.Ctx(ctx).Info().Int("files", len(files)).Int("records", df.RowCount()).Msg("records loaded")

	return df, files, nil
}
