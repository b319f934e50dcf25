// Package game drives one scheduled game through roster, identity, event
// and shift processing.
package game

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/reconciliation"
	"github.com/fortuna/rinkside/internal/store"
)

// Options selects optional work for a game.
type Options struct {
	Shifts bool
}

// Orchestrator processes games one at a time. It holds no per-game state.
type Orchestrator struct {
	sources  Sources
	resolver *identity.Resolver
	engine   *reconciliation.Engine
	matcher  *reconciliation.Matcher
	logger   *zap.Logger
}

// NewOrchestrator wires the sources to the identity resolver and the
// reconciliation engine.
func NewOrchestrator(sources Sources, engine *reconciliation.Engine, logger *zap.Logger) (*Orchestrator, error) {
	if sources.Roster == nil || sources.Authoritative == nil || sources.Report == nil {
		return nil, errors.New("roster, authoritative and report sources are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = reconciliation.NewEngine(logger)
	}
	return &Orchestrator{
		sources:  sources,
		resolver: identity.NewResolver(logger),
		engine:   engine,
		matcher:  reconciliation.NewMatcher(engine, logger),
		logger:   logger.Named("game"),
	}, nil
}

// Process runs a single game to completion. It never returns an error;
// failures are carried on the Outcome so the caller can keep going.
func (o *Orchestrator) Process(ctx context.Context, game store.ScheduledGame, opts Options) *Outcome {
	out := &Outcome{Game: game, Stage: StageRoster}
	log := o.logger.With(zap.String("game_id", game.GameID))

	roster, err := o.sources.Roster.Roster(ctx, game.GameID)
	if err == nil && roster == nil {
		err = errors.New("empty roster response")
	}
	if err != nil {
		log.Warn("roster unavailable", zap.Error(err))
		return out.fail(StageRoster, errors.Mark(err, ErrRosterUnavailable))
	}

	out.Stage = StageIdentity
	feed, err := o.sources.Authoritative.Game(ctx, game.GameID)
	if err == nil && feed == nil {
		err = errors.New("empty structured feed response")
	}
	if err != nil {
		log.Warn("structured feed unavailable", zap.Error(err))
		return out.fail(StageIdentity, errors.Mark(errors.Wrap(err, "structured feed"), identity.ErrIdentityResolution))
	}

	players, missing, err := o.resolver.Resolve(game.GameID, identity.NewIndex(feed.Players), roster)
	if err != nil {
		log.Warn("identity resolution failed", zap.Error(err))
		return out.fail(StageIdentity, err)
	}
	out.Players = players
	out.Missing = missing

	out.Stage = StageEvents
	events, path, err := o.events(ctx, game, feed, players)
	out.Path = path
	if err != nil {
		log.Warn("event reconciliation failed", zap.String("path", string(path)), zap.Error(err))
		return out.fail(StageEvents, err)
	}
	for i := range events {
		events[i].Date = game.DateString()
		events[i].HomeCoach = roster.HomeCoach
		events[i].AwayCoach = roster.AwayCoach
	}
	out.Events = events

	if opts.Shifts {
		out.Stage = StageShifts
		out.ShiftsAttempted = true
		shifts, err := o.shifts(ctx, game, feed.Teams, players)
		if err != nil {
			log.Warn("shifts unavailable", zap.Error(err))
			out.ShiftErr = err
		} else {
			out.Shifts = shifts
		}
	}

	out.Stage = StageDone
	log.Debug("game processed",
		zap.String("path", string(out.Path)),
		zap.Int("events", len(out.Events)),
		zap.Int("shifts", len(out.Shifts)),
		zap.Int("players", out.Players.Count()),
		zap.Int("missing", len(out.Missing)))
	return out
}

// events picks the positional path when the structured feed carries plays
// and the coordinate fallback otherwise. The fallback is never tried after
// a positional mismatch.
func (o *Orchestrator) events(ctx context.Context, game store.ScheduledGame, feed *store.AuthoritativeGame, players *identity.Players) ([]store.Event, Path, error) {
	if len(feed.Plays) > 0 {
		rendered, err := o.sources.Report.Events(ctx, game.GameID, players, feed.Teams, true)
		if err != nil {
			return nil, PathPositional, errors.Wrap(err, "rendered report")
		}
		merged, err := o.engine.Reconcile(game.GameID, feed.Plays, rendered)
		return merged, PathPositional, err
	}

	rendered, err := o.sources.Report.Events(ctx, game.GameID, players, feed.Teams, false)
	if err != nil {
		return nil, PathFallback, errors.Wrap(err, "rendered report")
	}

	var coords []store.CoordinateEvent
	if o.sources.Coordinates != nil {
		coords, err = o.sources.Coordinates.Coordinates(ctx, game.Date, feed.Teams.Home, feed.Teams.Away)
		if err != nil {
			o.engine.GetMetrics().FallbackFailures++
			return nil, PathFallback, errors.Mark(errors.Wrap(err, "coordinate feed"), reconciliation.ErrFallbackMerge)
		}
	}

	merged := o.matcher.Merge(rendered, coords, game.GameID, game.DateString(), feed.Teams.Away, feed.Teams.Home)
	return merged, PathFallback, nil
}

// shifts tries the structured shift chart first, then the rendered shift
// reports.
func (o *Orchestrator) shifts(ctx context.Context, game store.ScheduledGame, teams store.Teams, players *identity.Players) ([]store.Shift, error) {
	var errs error
	for _, src := range []ShiftSource{o.sources.Shifts, o.sources.ReportShifts} {
		if src == nil {
			continue
		}
		shifts, err := src.Shifts(ctx, game.GameID, teams, players)
		if err == nil {
			for i := range shifts {
				shifts[i].GameID = game.GameID
				shifts[i].Date = game.DateString()
			}
			return shifts, nil
		}
		errs = errors.CombineErrors(errs, err)
	}
	if errs == nil {
		errs = errors.New("no shift source configured")
	}
	return nil, errors.Mark(errors.Wrapf(errs, "game %s", game.GameID), ErrShiftSource)
}
