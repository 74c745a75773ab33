// Command tabinspect prints an inspection report of a tabular dataset.
//
// It loads the first existing candidate file (or generated data when none
// exists), prints previews and statistics, and runs the configured filters.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nao1215/tabinspect"
	"github.com/nao1215/tabinspect/internal/config"
	"github.com/nao1215/tabinspect/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	flags := config.NewFlagSet("tabinspect")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(flags)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "tabinspect: %v\n", err)
		return 1
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := tabinspect.NewLoader().AddPaths(cfg.Candidates...).WithLogger(logger)
	if cfg.Fallback.Enabled {
		loader = loader.WithFallback(tabinspect.NewBookingGenerator(cfg.Fallback.Rows, cfg.Fallback.Seed))
	}

	d, err := loader.Load(ctx)
	if err != nil {
		var notFound *tabinspect.DataNotFoundError
		if errors.As(err, &notFound) {
			_, _ = fmt.Fprintf(stdout, "No input file found (tried %d candidates), nothing to analyse\n", len(notFound.Candidates))
		}
		logger.Error("load failed", "err", err)
		return 1
	}

	opts, err := reportOptions(cfg)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	if err := report.New(stdout, opts).Run(ctx, d); err != nil {
		logger.Error("report failed", "err", err)
		return 1
	}
	return 0
}

// reportOptions converts the configuration into report options
func reportOptions(cfg *config.Config) (report.Options, error) {
	op, err := tabinspect.ParseOperator(cfg.Filters.Vehicle.Operator)
	if err != nil {
		return report.Options{}, err
	}
	dateRange, err := tabinspect.ParseDateRange(cfg.Filters.Dates.Start, cfg.Filters.Dates.End)
	if err != nil {
		return report.Options{}, err
	}

	return report.Options{
		PreviewRows:     cfg.PreviewRows,
		MaxRows:         cfg.MaxRows,
		Select:          cfg.Select,
		AlternateSelect: cfg.AlternateSelect,
		Status: report.StatusFilter{
			Column: cfg.Filters.Status.Column,
			Value:  cfg.Filters.Status.Value,
		},
		Threshold: report.ThresholdFilter{
			Column:      cfg.Filters.Vehicle.Column,
			Value:       cfg.Filters.Vehicle.Value,
			ValueColumn: cfg.Filters.Vehicle.ValueColumn,
			Operator:    op,
			Threshold:   cfg.Filters.Vehicle.Threshold,
		},
		Dates: report.DateFilter{
			Columns: cfg.Filters.Dates.Columns,
			Range:   dateRange,
			Label:   fmt.Sprintf("%s to %s", cfg.Filters.Dates.Start, cfg.Filters.Dates.End),
		},
		Queries: cfg.Queries,
	}, nil
}
