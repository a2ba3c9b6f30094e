package eph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Summary describes a completed run.
type Summary struct {
	RunID       string
	Files       []string
	Records     int // loaded
	Kept        int // after the status and geography filters
	IncomeKept  int // after the income filter as well
	Tables      []string
	Workbook    string
	DBTables    []string
	ElapsedTime time.Duration
}

// Run loads the survey files, computes every configured output and writes it as CSV, then to the
// optional workbook and database. Nothing is written if no input is found.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}

	logger := zerolog.Ctx(ctx).With().Str("run", sum.RunID).Logger()
	ctx = logger.WithContext(ctx)

	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	raw, files, e := Load(ctx, cfg)
	if e != nil {
		return nil, e
	}

	sum.Files, sum.Records = files, raw.RowCount()

	var all, income *DF
	if all, e = Normalize(ctx, raw, cfg, false); e != nil {
		return nil, e
	}

	if income, e = Normalize(ctx, raw, cfg, true); e != nil {
		return nil, e
	}

	sum.Kept, sum.IncomeKept = all.RowCount(), income.RowCount()

	tables := make([]Table, len(cfg.Outputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for ind, out := range cfg.Outputs {
		ind, out := ind, out
		g.Go(func() error {
			src := all
			if out.Statistic == Income {
				src = income
			}

			df, e := Compute(gctx, src, out)
			if e != nil {
				return e
			}

			f := NewOutputFiles()
			f.FloatFormat = cfg.FloatFormat
			fileName := out.FileName(cfg.OutputRoot)
			if e := f.WriteDF(fileName, df); e != nil {
				return fmt.Errorf("writing %s: %w", out.Name, e)
			}

			zerolog.Ctx(gctx).Info().Str("table", out.Name).Str("file", fileName).Int("rows", df.RowCount()).
				Msg("table written")

			tables[ind] = Table{Output: out, DF: df}

			return nil
		})
	}

	if e := g.Wait(); e != nil {
		return nil, e
	}

	for _, t := range tables {
		sum.Tables = append(sum.Tables, t.Output.FileName(cfg.OutputRoot))
	}

	if cfg.Workbook != "" {
		if e := WriteWorkbook(cfg.Workbook, tables); e != nil {
			return nil, fmt.Errorf("workbook: %w", e)
		}

		sum.Workbook = cfg.Workbook
		logger.Info().Str("file", cfg.Workbook).Msg("workbook written")
	}

	if cfg.DB.Dialect != "" {
		if sum.DBTables, e = export(ctx, cfg.DB, tables); e != nil {
			return nil, fmt.Errorf("database export: %w", e)
		}
	}

	sum.ElapsedTime = time.Since(start)
	logger.Info().Int("tables", len(sum.Tables)).Dur("elapsed", sum.ElapsedTime).Msg("run complete")

	return sum, nil
}

// Compute groups df by the keys of out and reduces each group with the statistic of out.
func Compute(ctx context.Context, df *DF, out Output) (*DF, error) {
	if e := ctx.Err(); e != nil {
		return nil, e
	}

	red, e := ReducerFor(out.Statistic)
	if e != nil {
		return nil, e
	}

	var res *DF
	if res, e = GroupBy(df, out.Keys, red); e != nil {
		return nil, fmt.Errorf("%s: %w", out.Name, e)
	}

	zerolog.Ctx(ctx).Debug().Str("table", out.Name).Strs("keys", out.Keys).Int("groups", res.RowCount()).
		Msg("table computed")

	return res, nil
}

func export(ctx context.Context, cfg DBConfig, tables []Table) ([]string, error) {
	d, e := Connect(ctx, cfg)
	if e != nil {
		return nil, e
	}
	defer func() { _ = d.Close() }()

	var saved []string
	for _, t := range tables {
		name := t.Output.Name
		if cfg.Schema != "" {
			name = cfg.Schema + "." + name
		}

		if e := d.Save(ctx, name, t.Output.Keys, t.DF); e != nil {
			return saved, fmt.Errorf("%s: %w", name, e)
		}

		saved = append(saved, name)
	}

	return saved, nil
}
