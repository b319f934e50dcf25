package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/config"
	"github.com/fortuna/rinkside/internal/logging"
)

type rootOptions struct {
	envFiles      []string
	season        int
	shifts        bool
	batchSize     int
	outputDir     string
	dsn           string
	redisURL      string
	publishStream string
	logLevel      string
	logFormat     string
	reportJSON    string
	migrate       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rinkside-scraper",
		Short: "Harvest a season of NHL play-by-play and shift data",
		Long: `Harvests every regular season and playoff game of one season, reconciling the
league's structured feed with its rendered game reports, and writes the season's
play-by-play and shift tables as CSV. Snapshots are rewritten every --batch-size
games so an interrupted run keeps what it had.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	opts.bind(cmd.Flags())

	return cmd
}

func (o *rootOptions) bind(f *pflag.FlagSet) {
	f.StringSliceVar(&o.envFiles, "env-file", nil, "Environment files to load (default .env when present)")
	f.IntVar(&o.season, "season", 0, "Season start year, e.g. 2016 for 2016-17")
	f.BoolVar(&o.shifts, "shifts", false, "Also harvest shifts")
	f.IntVar(&o.batchSize, "batch-size", backfill.DefaultBatchSize, "Games between snapshots")
	f.StringVar(&o.outputDir, "output-dir", "", "Directory for the CSV tables")
	f.StringVar(&o.dsn, "dsn", "", "PostgreSQL DSN for the season tables (optional)")
	f.StringVar(&o.redisURL, "redis-url", "", "Redis URL for the feed cache (optional)")
	f.StringVar(&o.publishStream, "publish-stream", "", "Redis stream for progress messages (requires --redis-url)")
	f.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", "", "Log format: console or json")
	f.StringVar(&o.reportJSON, "report-json", "", "Also write the run report as JSON to this file")
	f.BoolVar(&o.migrate, "migrate", true, "Apply database migrations before the run")
}

// apply overrides cfg with every flag set on the command line.
func (o *rootOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("season") {
		cfg.Season = o.season
	}
	if flags.Changed("shifts") {
		cfg.Shifts = o.shifts
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = o.batchSize
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("dsn") {
		cfg.DatabaseDSN = o.dsn
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = o.redisURL
	}
	if flags.Changed("publish-stream") {
		cfg.PublishStream = o.publishStream
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(o.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(o.logFormat)
	}
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}
	opts.apply(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(appName+" starting", zap.String("version", appVersion))

	ctx := cmd.Context()
	h, err := build(ctx, cfg, opts.migrate, logger)
	if err != nil {
		logger.Error("setup failed", zap.Error(err))
		return err
	}
	defer h.close()

	spec := backfill.RunSpec{Season: cfg.Season, Shifts: cfg.Shifts, BatchSize: cfg.BatchSize}
	report, runErr := h.runner.Run(ctx, spec, h.reporters)

	printReport(cmd.OutOrStdout(), report)
	if opts.reportJSON != "" {
		if err := writeReportJSON(opts.reportJSON, report); err != nil {
			logger.Error("write report", zap.String("path", opts.reportJSON), zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("run ended early", zap.Error(runErr))
		return runErr
	}
	return nil
}

func printReport(w io.Writer, r *backfill.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "Season %s: %d/%d games processed, %d succeeded\n", r.Label, r.Games, r.Scheduled, r.Succeeded)
	fmt.Fprintf(w, "  events: %d  shifts: %d  checkpoints: %d  took: %s\n", r.Events, r.Shifts, r.Checkpoints, r.Duration.Round(time.Second))
	if r.Interrupted {
		fmt.Fprintln(w, "  run was interrupted")
	}
	if len(r.BrokenEvents) > 0 {
		fmt.Fprintf(w, "  broken play-by-play (%d): %s\n", len(r.BrokenEvents), strings.Join(r.BrokenEvents, ", "))
	}
	if len(r.BrokenShifts) > 0 {
		fmt.Fprintf(w, "  broken shifts (%d): %s\n", len(r.BrokenShifts), strings.Join(r.BrokenShifts, ", "))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  game %s failed at %s: %s\n", f.GameID, f.Stage, f.Error)
	}
	if len(r.MissingIDs) > 0 {
		fmt.Fprintf(w, "  players without ids (%d):\n", len(r.MissingIDs))
		for _, m := range r.MissingIDs {
			fmt.Fprintf(w, "    %s %s #%s %s\n", m.GameID, m.Side, m.Entry.Number, m.Entry.Name)
		}
	}
	for _, e := range r.CheckpointErrors {
		fmt.Fprintf(w, "  checkpoint error: %s\n", e)
	}
}

func writeReportJSON(path string, r *backfill.Report) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	return os.WriteFile(path, data, 0o644)
}
