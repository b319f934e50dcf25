package game

import (
	"context"
	"time"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/store"
)

// RosterSource returns the pre-game roster report for a game.
type RosterSource interface {
	Roster(ctx context.Context, gameID string) (*store.Roster, error)
}

// AuthoritativeSource returns the structured game feed.
type AuthoritativeSource interface {
	Game(ctx context.Context, gameID string) (*store.AuthoritativeGame, error)
}

// ReportSource returns the rendered play-by-play report. When
// authoritativeAvailable is false the report has to stand in for the
// structured feed and keeps every row it can parse.
type ReportSource interface {
	Events(ctx context.Context, gameID string, players *identity.Players, teams store.Teams, authoritativeAvailable bool) ([]store.Event, error)
}

// CoordinateSource returns the fallback coordinate feed for a game.
type CoordinateSource interface {
	Coordinates(ctx context.Context, date time.Time, homeTeam, awayTeam string) ([]store.CoordinateEvent, error)
}

// ShiftSource returns shift records for a game.
type ShiftSource interface {
	Shifts(ctx context.Context, gameID string, teams store.Teams, players *identity.Players) ([]store.Shift, error)
}

// Sources bundles the collaborators the orchestrator needs. Roster,
// Authoritative and Report are required; Coordinates may be nil, in which
// case fallback games carry no coordinates.
type Sources struct {
	Roster        RosterSource
	Authoritative AuthoritativeSource
	Report        ReportSource
	Coordinates   CoordinateSource
	Shifts        ShiftSource
	ReportShifts  ShiftSource
}
