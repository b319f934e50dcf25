package main

import (
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/game"
	"github.com/fortuna/rinkside/internal/reconciliation"
	"github.com/fortuna/rinkside/internal/store"
)

// consoleReporter logs run progress.
type consoleReporter struct {
	engine *reconciliation.Engine
	logger *zap.Logger
}

func newConsoleReporter(engine *reconciliation.Engine, logger *zap.Logger) *consoleReporter {
	return &consoleReporter{engine: engine, logger: logger.Named("progress")}
}

func (c *consoleReporter) OnRunStart(spec backfill.RunSpec, total int) {
	c.logger.Info("run started",
		zap.String("season", spec.Label()),
		zap.Int("games", total),
		zap.Bool("shifts", spec.Shifts))
}

func (c *consoleReporter) OnGameStart(g store.ScheduledGame, index int, total int) {
	c.logger.Debug("game",
		zap.Int("n", index+1),
		zap.Int("of", total),
		zap.String("game_id", g.GameID),
		zap.String("date", g.DateString()))
}

func (c *consoleReporter) OnGameProcessed(out *game.Outcome, index int, total int) {
	fields := []zap.Field{
		zap.Int("n", index+1),
		zap.Int("of", total),
		zap.String("game_id", out.Game.GameID),
		zap.String("path", string(out.Path)),
		zap.Int("events", len(out.Events)),
		zap.Int("shifts", len(out.Shifts)),
	}
	switch {
	case out.Failed():
		c.logger.Warn("game failed", append(fields, zap.String("stage", string(out.Stage)), zap.Error(out.Failure.Err))...)
	case out.ShiftsBroken():
		c.logger.Warn("game done without shifts", append(fields, zap.Error(out.ShiftErr))...)
	default:
		c.logger.Info("game done", fields...)
	}
}

func (c *consoleReporter) OnCheckpoint(label string, games int, err error) {
	if err != nil {
		c.logger.Error("checkpoint failed", zap.String("season", label), zap.Int("games", games), zap.Error(err))
		return
	}
	c.logger.Info("checkpoint", zap.String("season", label), zap.Int("games", games))
}

func (c *consoleReporter) OnRunComplete(report *backfill.Report) {
	m := c.engine.GetMetrics()
	c.logger.Info("run complete",
		zap.String("season", report.Label),
		zap.Int("games", report.Games),
		zap.Int("reconciliations", m.Reconciliations),
		zap.Int("mismatches", m.Mismatches),
		zap.Int("fallback_merges", m.FallbackMerges),
		zap.Int("fallback_failures", m.FallbackFailures),
		zap.Int("skipped_coordinates", m.SkippedCoordinates),
		zap.Duration("took", report.Duration))
}
