package backfill

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/game"
)

// Runner harvests a season one game at a time and checkpoints the
// accumulated tables to a sink.
type Runner struct {
	schedule  ScheduleSource
	processor GameProcessor
	sink      Sink
	logger    *zap.Logger
}

// NewRunner constructs a runner.
func NewRunner(schedule ScheduleSource, processor GameProcessor, sink Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		schedule:  schedule,
		processor: processor,
		sink:      sink,
		logger:    logger.Named("backfill"),
	}
}

// Run processes every scheduled game of the season in order. Game failures
// end up in the report; only a schedule failure or cancellation is
// returned as an error, and the report is valid in both cases.
func (r *Runner) Run(ctx context.Context, spec RunSpec, reporter Reporter) (*Report, error) {
	if spec.BatchSize <= 0 {
		spec.BatchSize = DefaultBatchSize
	}
	label := spec.Label()
	report := &Report{Label: label, StartedAt: time.Now()}

	games, err := r.schedule.Schedule(ctx, spec.Season)
	if err != nil {
		return report, errors.Wrapf(err, "fetch schedule for %s", label)
	}
	report.Scheduled = len(games)
	total := len(games)

	if reporter != nil {
		reporter.OnRunStart(spec, total)
	}
	r.logger.Info("starting season",
		zap.String("season", label),
		zap.Int("games", total),
		zap.Bool("shifts", spec.Shifts),
		zap.Int("batch_size", spec.BatchSize))

	acc := &Accumulation{}
	sinceCheckpoint := 0
	opts := game.Options{Shifts: spec.Shifts}

	var runErr error
	for idx, g := range games {
		if err := ctx.Err(); err != nil {
			runErr = err
			report.Interrupted = true
			break
		}

		if reporter != nil {
			reporter.OnGameStart(g, idx, total)
		}

		out := r.processor.Process(ctx, g, opts)
		if err := ctx.Err(); err != nil && (out.Failed() || out.ShiftsBroken()) {
			// Cut short, not broken.
			r.logger.Info("dropping interrupted game", zap.String("game_id", g.GameID))
			runErr = err
			report.Interrupted = true
			break
		}
		acc.Add(out)
		sinceCheckpoint++

		if reporter != nil {
			reporter.OnGameProcessed(out, idx, total)
		}

		if acc.Games%spec.BatchSize == 0 {
			r.checkpoint(ctx, label, spec, acc, report, reporter)
			sinceCheckpoint = 0
		}
	}

	if sinceCheckpoint > 0 {
		// Cancellation must not stop the last flush.
		r.checkpoint(context.WithoutCancel(ctx), label, spec, acc, report, reporter)
	}

	report.Games = acc.Games
	report.Succeeded = acc.Succeeded
	report.Events = len(acc.Events)
	report.Shifts = len(acc.Shifts)
	report.BrokenEvents = acc.BrokenEvents
	report.BrokenShifts = acc.BrokenShifts
	report.MissingIDs = acc.MissingIDs
	report.Failures = acc.Failures
	report.Duration = time.Since(report.StartedAt)

	r.logger.Info("season finished",
		zap.String("season", label),
		zap.Int("games", report.Games),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("broken_events", len(report.BrokenEvents)),
		zap.Int("broken_shifts", len(report.BrokenShifts)),
		zap.Int("missing_ids", len(report.MissingIDs)),
		zap.Bool("interrupted", report.Interrupted))

	if reporter != nil {
		reporter.OnRunComplete(report)
	}

	if runErr != nil {
		return report, errors.Wrapf(runErr, "season %s interrupted after %d games", label, acc.Games)
	}
	return report, nil
}

func (r *Runner) checkpoint(ctx context.Context, label string, spec RunSpec, acc *Accumulation, report *Report, reporter Reporter) {
	snap := Snapshot{
		Label:         label,
		Events:        acc.Events,
		Shifts:        acc.Shifts,
		IncludeShifts: spec.Shifts,
	}

	var err error
	if r.sink != nil {
		err = r.sink.Checkpoint(ctx, snap)
	}
	report.Checkpoints++

	if err != nil {
		report.CheckpointErrors = append(report.CheckpointErrors, err.Error())
		r.logger.Error("checkpoint failed",
			zap.String("season", label),
			zap.Int("games", acc.Games),
			zap.Error(err))
	} else {
		r.logger.Info("checkpoint written",
			zap.String("season", label),
			zap.Int("games", acc.Games),
			zap.Int("events", len(acc.Events)),
			zap.Int("shifts", len(acc.Shifts)))
	}

	if reporter != nil {
		reporter.OnCheckpoint(label, acc.Games, err)
	}
}
