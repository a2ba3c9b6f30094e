package eph

import "errors"

var (
	// ErrMissingYearDirectory marks a requested year with no directory. The year is skipped.
	ErrMissingYearDirectory = errors.New("year directory does not exist")
	// ErrNoMatchingFiles marks a year directory with no survey files. The year is skipped.
	ErrNoMatchingFiles = errors.New("no matching files")
	// ErrNoInputFound is fatal: no records were found across all requested years.
	ErrNoInputFound = errors.New("no input files found")

	ErrColumnNotFound    = errors.New("column not found")
	ErrUnknownStatistic  = errors.New("unknown statistic")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
