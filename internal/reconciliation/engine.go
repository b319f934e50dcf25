package reconciliation

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/store"
)

var (
	// ErrReconciliationMismatch means the structured feed and the rendered
	// report enumerate a different number of events for the same game.
	ErrReconciliationMismatch = errors.New("event count mismatch between feeds")

	// ErrFallbackMerge means the fallback coordinate join could not be built.
	ErrFallbackMerge = errors.New("fallback coordinate merge failed")
)

// Metrics tracks reconciliation statistics across a run.
type Metrics struct {
	Reconciliations    int
	Mismatches         int
	FallbackMerges     int
	FallbackFailures   int
	UnmatchedRows      int
	SkippedCoordinates int
	LastReconciliation time.Time
}

// Engine merges the structured feed's plays into the rendered report's
// events by position.
type Engine struct {
	metrics *Metrics
	logger  *zap.Logger
}

// NewEngine creates a new reconciliation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		metrics: &Metrics{},
		logger:  logger.Named("reconciliation"),
	}
}

// Reconcile joins authoritative plays onto rendered events row by row. Both
// feeds must enumerate the same events in the same order; when the counts
// differ nothing is merged and ErrReconciliationMismatch is returned.
//
// The rendered row supplies every column except the rink coordinates, which
// come from the structured feed. The structured feed's event type is dropped.
func (e *Engine) Reconcile(gameID string, authoritative []store.Play, rendered []store.Event) ([]store.Event, error) {
	e.metrics.Reconciliations++
	e.metrics.LastReconciliation = time.Now()

	if err := checkCardinality(gameID, authoritative, rendered); err != nil {
		e.metrics.Mismatches++
		e.logger.Warn("feeds disagree on event count",
			zap.String("game_id", gameID),
			zap.Int("authoritative", len(authoritative)),
			zap.Int("rendered", len(rendered)))
		return nil, err
	}

	merged := make([]store.Event, len(rendered))
	for i, ev := range rendered {
		play := authoritative[i]
		ev.XC = play.XC
		ev.YC = play.YC
		merged[i] = ev
	}

	return merged, nil
}

// checkCardinality is the precondition of the positional merge.
func checkCardinality(gameID string, authoritative []store.Play, rendered []store.Event) error {
	if len(authoritative) != len(rendered) {
		return errors.Wrapf(ErrReconciliationMismatch,
			"game %s: structured feed has %d events, rendered report has %d",
			gameID, len(authoritative), len(rendered))
	}
	return nil
}

// GetMetrics returns current reconciliation metrics.
func (e *Engine) GetMetrics() *Metrics {
	return e.metrics
}

