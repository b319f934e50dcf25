package game

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/store"
)

var (
	// ErrRosterUnavailable means the roster report could not be obtained.
	// Nothing else can be resolved without it.
	ErrRosterUnavailable = errors.New("roster unavailable")

	// ErrShiftSource means both shift sources failed for a game.
	ErrShiftSource = errors.New("shift sources failed")
)

// Stage is a step of per-game processing.
type Stage string

const (
	StageRoster   Stage = "roster"
	StageIdentity Stage = "identity"
	StageEvents   Stage = "events"
	StageShifts   Stage = "shifts"
	StageDone     Stage = "done"
)

// Path records which event strategy a game took.
type Path string

const (
	PathNone       Path = ""
	PathPositional Path = "positional"
	PathFallback   Path = "fallback"
)

// StageError is a fatal failure of one stage for one game.
type StageError struct {
	Stage  Stage
	GameID string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("game %s: %s stage: %v", e.GameID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Outcome is the result of processing one game. Stage is StageDone on
// success, otherwise the stage that failed.
type Outcome struct {
	Game    store.ScheduledGame
	Stage   Stage
	Failure *StageError
	Path    Path

	Events  []store.Event
	Shifts  []store.Shift
	Players *identity.Players
	Missing []identity.Missing

	ShiftsAttempted bool
	ShiftErr        error
}

// Failed reports whether a fatal stage failure occurred.
func (o *Outcome) Failed() bool {
	return o.Failure != nil
}

// EventsBroken reports whether the game belongs on the broken-events list.
// Roster failures are not event failures: no event source was consulted.
func (o *Outcome) EventsBroken() bool {
	return o.Failed() && o.Failure.Stage != StageRoster
}

// ShiftsBroken reports whether both shift sources failed.
func (o *Outcome) ShiftsBroken() bool {
	return o.ShiftErr != nil
}

func (o *Outcome) fail(stage Stage, err error) *Outcome {
	o.Stage = stage
	o.Failure = &StageError{Stage: stage, GameID: o.Game.GameID, Err: err}
	return o
}
