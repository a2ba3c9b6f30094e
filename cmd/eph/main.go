// Command eph computes labor-force rates and income summaries from EPH individual microdata.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/invertedv/eph"
	"github.com/invertedv/eph/chart"
	"github.com/rs/zerolog"
)

type options struct {
	config      string
	input       string
	output      string
	from, to    int
	workers     int
	charts      bool
	chartsOnly  bool
	chartFormat string
	workbook    string
	logLevel    string
}

func main() {
	var opts options

	fs := newFlagSet(&opts, flag.ExitOnError)
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if e := run(ctx, fs, &opts); e != nil {
		fmt.Fprintln(os.Stderr, "eph:", e)
		stop()
		os.Exit(1)
	}
}

func newFlagSet(opts *options, handling flag.ErrorHandling) *flag.FlagSet {
	fs := flag.NewFlagSet("eph", handling)
	fs.StringVar(&opts.config, "config", "", "YAML configuration file")
	fs.StringVar(&opts.input, "input", "", "root of the year directories")
	fs.StringVar(&opts.output, "output", "", "root of the output directories")
	fs.IntVar(&opts.from, "from", 0, "first year")
	fs.IntVar(&opts.to, "to", 0, "last year")
	fs.IntVar(&opts.workers, "workers", 0, "tables computed concurrently")
	fs.BoolVar(&opts.charts, "charts", false, "draw charts after writing the tables")
	fs.BoolVar(&opts.chartsOnly, "charts-only", false, "draw charts from existing tables")
	fs.StringVar(&opts.chartFormat, "chart-format", "", "html or png")
	fs.StringVar(&opts.workbook, "workbook", "", "also write the tables to this xlsx file")
	fs.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")

	return fs
}

func run(ctx context.Context, fs *flag.FlagSet, opts *options) error {
	cfg, e := loadConfig(fs, opts)
	if e != nil {
		return e
	}

	logger, e := eph.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if e != nil {
		return e
	}

	ctx = logger.WithContext(ctx)

	if !opts.chartsOnly {
		sum, e := eph.Run(ctx, cfg)
		if e != nil {
			return e
		}

		printSummary(sum)
	}

	if opts.charts || opts.chartsOnly {
		files, e := chart.Render(ctx, cfg)
		if e != nil {
			return e
		}

		fmt.Printf("%d charts written\n", len(files))
	}

	zerolog.Ctx(ctx).Debug().Msg("done")

	return nil
}

// loadConfig reads the configuration, applies the flags and only then validates, so a flag can repair a
// value the file or environment got wrong.
func loadConfig(fs *flag.FlagSet, opts *options) (*eph.Config, error) {
	cfg, e := eph.ReadConfig(opts.config)
	if e != nil {
		return nil, e
	}

	applyFlags(fs, opts, cfg)
	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	return cfg, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(fs *flag.FlagSet, opts *options, cfg *eph.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputRoot = opts.input
		case "output":
			cfg.OutputRoot = opts.output
		case "from":
			cfg.FirstYear = opts.from
		case "to":
			cfg.LastYear = opts.to
		case "workers":
			cfg.Workers = opts.workers
		case "chart-format":
			cfg.ChartFormat = strings.ToLower(opts.chartFormat)
		case "workbook":
			cfg.Workbook = opts.workbook
		case "log-level":
			cfg.LogLevel = strings.ToLower(opts.logLevel)
		}
	})
}

func printSummary(sum *eph.Summary) {
	fmt.Printf("run %s: %d files, %d records, %d kept (%d with income)\n",
		sum.RunID, len(sum.Files), sum.Records, sum.Kept, sum.IncomeKept)

	for _, t := range sum.Tables {
		fmt.Println("  ", t)
	}

	if sum.Workbook != "" {
		fmt.Println("   workbook:", sum.Workbook)
	}

	for _, t := range sum.DBTables {
		fmt.Println("   table:", t)
	}

	fmt.Printf("completed in %s\n", sum.ElapsedTime.Round(1e6))
}
