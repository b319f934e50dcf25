package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/cache"
	"github.com/fortuna/rinkside/internal/config"
	"github.com/fortuna/rinkside/internal/game"
	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/ingest/espn"
	"github.com/fortuna/rinkside/internal/ingest/nhl"
	"github.com/fortuna/rinkside/internal/ingest/report"
	"github.com/fortuna/rinkside/internal/output"
	"github.com/fortuna/rinkside/internal/publisher"
	"github.com/fortuna/rinkside/internal/reconciliation"
	"github.com/fortuna/rinkside/internal/store"
	"github.com/fortuna/rinkside/internal/store/repository"
)

// harness is everything a run needs, built from the configuration.
type harness struct {
	runner    *backfill.Runner
	reporters backfill.Reporters
	closers   []func() error
}

func (h *harness) close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		_ = h.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger) (_ *harness, err error) {
	h := &harness{}
	defer func() {
		if err != nil {
			h.close()
		}
	}()

	var fetchOpts []ingest.Option
	var feedCache *cache.RedisCache
	if cfg.RedisURL != "" {
		feedCache, err = cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		h.closers = append(h.closers, feedCache.Close)
		fetchOpts = append(fetchOpts, ingest.WithCache(feedCache))
		logger.Info("feed cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	fetcher := ingest.NewFetcher(cfg.HTTPTimeout, logger, fetchOpts...)
	nhlClient := nhl.NewClient(fetcher, cfg.NHLStatsBase, cfg.NHLShiftsBase, logger)
	reportClient := report.NewClient(fetcher, cfg.NHLReportBase, logger)
	espnClient := espn.NewClient(fetcher, cfg.ESPNAPIBase, cfg.ESPNFeedBase, logger)

	engine := reconciliation.NewEngine(logger)
	orchestrator, err := game.NewOrchestrator(game.Sources{
		Roster:        reportClient,
		Authoritative: nhlClient,
		Report:        reportClient,
		Coordinates:   espnClient,
		Shifts:        nhlClient,
		ReportShifts:  reportClient,
	}, engine, logger)
	if err != nil {
		return nil, err
	}

	sinks, err := buildSinks(ctx, cfg, migrate, logger, h)
	if err != nil {
		return nil, err
	}

	h.runner = backfill.NewRunner(nhlClient, orchestrator, sinks, logger)
	h.reporters = backfill.Reporters{newConsoleReporter(engine, logger)}

	if cfg.PublishStream != "" {
		if feedCache == nil {
			return nil, errors.New("publishing progress requires a redis url")
		}
		pub := publisher.NewRedisStreamPublisher(ctx, feedCache.Client(), cfg.PublishStream, logger)
		h.reporters = append(h.reporters, pub)
		logger.Info("publishing progress", zap.String("stream", cfg.PublishStream), zap.String("run_id", pub.RunID()))
	}

	return h, nil
}

func buildSinks(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger, h *harness) (output.Multi, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", cfg.OutputDir)
	}
	sinks := output.Multi{output.NewCSVSink(cfg.OutputDir, logger)}

	if cfg.DatabaseDSN != "" {
		db, err := store.NewDatabase(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, db.Close)
		if migrate {
			if err := db.RunMigrations(); err != nil {
				return nil, err
			}
		}
		sinks = append(sinks, repository.NewSeasonRepository(db, logger))
		logger.Info("database sink enabled")
	}

	if cfg.S3Enabled() {
		client, err := output.NewS3Client(ctx, output.S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, output.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix, logger))
		logger.Info("object storage sink enabled", zap.String("bucket", cfg.S3Bucket))
	}

	return sinks, nil
}
