package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/rinkside/internal/game"
	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/store"
)

// DefaultBatchSize is the number of games between checkpoints.
const DefaultBatchSize = 10

// RunSpec describes the season to harvest.
type RunSpec struct {
	Season    int  `json:"season"`
	Shifts    bool `json:"shifts"`
	BatchSize int  `json:"batch_size"`
}

// Label is the season label used for output names, e.g. "20162017".
func (s RunSpec) Label() string {
	return SeasonLabel(s.Season)
}

// SeasonLabel formats a season start year as its two-year label.
func SeasonLabel(season int) string {
	return fmt.Sprintf("%d%d", season, season+1)
}

// ScheduleSource lists a season's games in schedule order.
type ScheduleSource interface {
	Schedule(ctx context.Context, season int) ([]store.ScheduledGame, error)
}

// GameProcessor runs one game through every stage.
type GameProcessor interface {
	Process(ctx context.Context, g store.ScheduledGame, opts game.Options) *game.Outcome
}

// Snapshot is the full accumulated season handed to a sink at a checkpoint.
type Snapshot struct {
	Label         string
	Events        []store.Event
	Shifts        []store.Shift
	IncludeShifts bool
}

// Sink persists snapshots. Every call replaces what the previous call wrote
// for the same label.
type Sink interface {
	Checkpoint(ctx context.Context, snap Snapshot) error
}

// Failure is one game that did not produce events.
type Failure struct {
	GameID string     `json:"game_id"`
	Stage  game.Stage `json:"stage"`
	Error  string     `json:"error"`
}

// Accumulation is the season state built up game by game.
type Accumulation struct {
	Events []store.Event
	Shifts []store.Shift

	BrokenEvents []string
	BrokenShifts []string
	MissingIDs   []identity.Missing
	Failures     []Failure

	Games     int
	Succeeded int
}

// Add folds one game outcome into the accumulation.
func (a *Accumulation) Add(out *game.Outcome) {
	a.Games++
	a.MissingIDs = append(a.MissingIDs, out.Missing...)

	if out.Failed() {
		a.Failures = append(a.Failures, Failure{
			GameID: out.Game.GameID,
			Stage:  out.Failure.Stage,
			Error:  out.Failure.Err.Error(),
		})
		if out.EventsBroken() {
			a.BrokenEvents = append(a.BrokenEvents, out.Game.GameID)
		}
		return
	}

	a.Succeeded++
	a.Events = append(a.Events, out.Events...)
	a.Shifts = append(a.Shifts, out.Shifts...)
	if out.ShiftsBroken() {
		a.BrokenShifts = append(a.BrokenShifts, out.Game.GameID)
	}
}

// Report summarises a finished or interrupted run.
type Report struct {
	Label        string             `json:"label"`
	Scheduled    int                `json:"scheduled"`
	Games        int                `json:"games"`
	Succeeded    int                `json:"succeeded"`
	Events       int                `json:"events"`
	Shifts       int                `json:"shifts"`
	BrokenEvents []string           `json:"broken_events"`
	BrokenShifts []string           `json:"broken_shifts"`
	MissingIDs   []identity.Missing `json:"missing_ids"`
	Failures     []Failure          `json:"failures"`

	Checkpoints      int      `json:"checkpoints"`
	CheckpointErrors []string `json:"checkpoint_errors,omitempty"`

	Interrupted bool          `json:"interrupted"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(spec RunSpec, total int)
	OnGameStart(g store.ScheduledGame, index int, total int)
	OnGameProcessed(out *game.Outcome, index int, total int)
	OnCheckpoint(label string, games int, err error)
	OnRunComplete(report *Report)
}

// Reporters fans callbacks out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) OnRunStart(spec RunSpec, total int) {
	for _, r := range rs {
		r.OnRunStart(spec, total)
	}
}

func (rs Reporters) OnGameStart(g store.ScheduledGame, index int, total int) {
	for _, r := range rs {
		r.OnGameStart(g, index, total)
	}
}

func (rs Reporters) OnGameProcessed(out *game.Outcome, index int, total int) {
	for _, r := range rs {
		r.OnGameProcessed(out, index, total)
	}
}

func (rs Reporters) OnCheckpoint(label string, games int, err error) {
	for _, r := range rs {
		r.OnCheckpoint(label, games, err)
	}
}

func (rs Reporters) OnRunComplete(report *Report) {
	for _, r := range rs {
		r.OnRunComplete(report)
	}
}
