package reconciliation

import (
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/store"
)

// coordinateKey is the approximate identity of an event shared by the
// rendered report and the fallback coordinate feed.
type coordinateKey struct {
	period  int
	seconds int
	event   string
}

func newCoordinateKey(period, seconds int, event string) (coordinateKey, error) {
	event = strings.ToUpper(strings.TrimSpace(event))
	switch {
	case period < 1:
		return coordinateKey{}, errors.Newf("invalid period %d", period)
	case seconds < 0:
		return coordinateKey{}, errors.Newf("invalid elapsed time %d", seconds)
	case event == "":
		return coordinateKey{}, errors.New("missing event type")
	}
	return coordinateKey{period: period, seconds: seconds, event: event}, nil
}

// Matcher fills rendered-report events with coordinates from the fallback
// feed when the structured feed has no plays.
type Matcher struct {
	engine *Engine
	logger *zap.Logger
}

// NewMatcher creates a matcher that reports into the engine's metrics.
func NewMatcher(engine *Engine, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = NewEngine(logger)
	}
	return &Matcher{
		engine: engine,
		logger: logger.Named("matcher"),
	}
}

// Merge left-joins coordinates onto rendered events by (period, elapsed
// seconds, event type). Every rendered event appears exactly once in the
// output, in its original order; events with no counterpart keep null
// coordinates. When several coordinate rows share a key the first one in
// feed order wins. Coordinate rows with an invalid key are skipped and
// rendered rows with an invalid key keep null coordinates.
func (m *Matcher) Merge(rendered []store.Event, coords []store.CoordinateEvent, gameID, date, awayTeam, homeTeam string) []store.Event {
	metrics := m.engine.GetMetrics()
	metrics.FallbackMerges++

	byKey := make(map[coordinateKey]store.CoordinateEvent, len(coords))
	skipped := 0
	for i, c := range coords {
		key, err := newCoordinateKey(c.Period, c.SecondsElapsed, c.Event)
		if err != nil {
			skipped++
			m.logger.Debug("skipping coordinate row",
				zap.String("game_id", gameID),
				zap.Int("row", i),
				zap.Error(err))
			continue
		}
		if _, seen := byKey[key]; !seen {
			byKey[key] = c
		}
	}

	merged := make([]store.Event, len(rendered))
	unmatched := 0
	for i, ev := range rendered {
		ev.GameID = gameID
		ev.Date = date
		ev.AwayTeam = awayTeam
		ev.HomeTeam = homeTeam
		ev.XC, ev.YC = sql.NullFloat64{}, sql.NullFloat64{}

		key, err := newCoordinateKey(ev.Period, ev.SecondsElapsed, ev.Event)
		if err != nil {
			unmatched++
			merged[i] = ev
			continue
		}
		if c, ok := byKey[key]; ok {
			ev.XC = sql.NullFloat64{Float64: c.XC, Valid: true}
			ev.YC = sql.NullFloat64{Float64: c.YC, Valid: true}
		} else {
			unmatched++
		}
		merged[i] = ev
	}

	metrics.UnmatchedRows += unmatched
	metrics.SkippedCoordinates += skipped
	m.logger.Debug("merged fallback coordinates",
		zap.String("game_id", gameID),
		zap.Int("events", len(merged)),
		zap.Int("unmatched", unmatched),
		zap.Int("skipped", skipped))

	return merged
}
