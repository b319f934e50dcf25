package store

import (
	"database/sql"
	"time"
)

// DateLayout is the calendar format used for game dates in every output table.
const DateLayout = "2006-01-02"

// ScheduledGame is one entry of a season schedule.
type ScheduledGame struct {
	GameID string    `json:"game_id"`
	Date   time.Time `json:"date"`
}

// DateString formats the game date the way the output tables carry it.
func (g ScheduledGame) DateString() string {
	return g.Date.Format(DateLayout)
}

// Teams holds the canonical abbreviations for both sides of a game.
type Teams struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// RosterEntry is one dressed player as listed on the pre-game roster report.
type RosterEntry struct {
	Number   string `json:"number"`
	Position string `json:"position"`
	Name     string `json:"name"`
}

// IsGoalie reports whether the roster lists the entry as a goaltender.
func (r RosterEntry) IsGoalie() bool {
	return r.Position == "G"
}

// Roster is the pre-game roster for both teams plus their head coaches.
type Roster struct {
	Home      []RosterEntry `json:"home"`
	Away      []RosterEntry `json:"away"`
	HomeCoach string        `json:"home_coach"`
	AwayCoach string        `json:"away_coach"`
}

// AuthoritativePlayer is a player as listed by the structured game feed.
type AuthoritativePlayer struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Position string `json:"position"`
}

// Play is one event from the structured game feed. Only its coordinates
// survive reconciliation; the event type is kept for the cardinality log.
type Play struct {
	Event          string          `json:"event"`
	Period         int             `json:"period"`
	SecondsElapsed int             `json:"seconds_elapsed"`
	XC             sql.NullFloat64 `json:"xc"`
	YC             sql.NullFloat64 `json:"yc"`
}

// AuthoritativeGame is everything the structured feed returns for a game.
// Plays may legitimately be empty for games where the feed is degenerate.
type AuthoritativeGame struct {
	Teams   Teams                 `json:"teams"`
	Players []AuthoritativePlayer `json:"players"`
	Plays   []Play                `json:"plays"`
}

// CoordinateEvent is one row of the fallback coordinate feed.
type CoordinateEvent struct {
	Period         int     `json:"period"`
	SecondsElapsed int     `json:"seconds_elapsed"`
	Event          string  `json:"event"`
	XC             float64 `json:"xc"`
	YC             float64 `json:"yc"`
}

// PlayerRef is a player reference inside an event row.
type PlayerRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Event is one canonical play-by-play row.
type Event struct {
	GameID         string          `json:"game_id" db:"game_id"`
	Date           string          `json:"date" db:"date"`
	Period         int             `json:"period" db:"period"`
	Event          string          `json:"event" db:"event"`
	Description    string          `json:"description" db:"description"`
	TimeElapsed    string          `json:"time_elapsed" db:"time_elapsed"`
	SecondsElapsed int             `json:"seconds_elapsed" db:"seconds_elapsed"`
	Strength       string          `json:"strength" db:"strength"`
	Zone           string          `json:"ev_zone" db:"ev_zone"`
	Type           string          `json:"type" db:"type"`
	EvTeam         string          `json:"ev_team" db:"ev_team"`
	AwayTeam       string          `json:"away_team" db:"away_team"`
	HomeTeam       string          `json:"home_team" db:"home_team"`
	Players        [3]PlayerRef    `json:"players"`
	AwayOnIce      [6]PlayerRef    `json:"away_on_ice"`
	HomeOnIce      [6]PlayerRef    `json:"home_on_ice"`
	AwayGoalie     string          `json:"away_goalie" db:"away_goalie"`
	HomeGoalie     string          `json:"home_goalie" db:"home_goalie"`
	AwaySkaters    int             `json:"away_skaters" db:"away_skaters"`
	HomeSkaters    int             `json:"home_skaters" db:"home_skaters"`
	AwayScore      int             `json:"away_score" db:"away_score"`
	HomeScore      int             `json:"home_score" db:"home_score"`
	XC             sql.NullFloat64 `json:"xc" db:"xc"`
	YC             sql.NullFloat64 `json:"yc" db:"yc"`
	HomeCoach      string          `json:"home_coach" db:"home_coach"`
	AwayCoach      string          `json:"away_coach" db:"away_coach"`
}

// HasCoordinates reports whether both rink coordinates are present.
func (e Event) HasCoordinates() bool {
	return e.XC.Valid && e.YC.Valid
}

// Shift is one continuous on-ice interval for a player. Times are seconds
// elapsed in the period.
type Shift struct {
	GameID   string `json:"game_id" db:"game_id"`
	Date     string `json:"date" db:"date"`
	Period   int    `json:"period" db:"period"`
	Team     string `json:"team" db:"team"`
	Player   string `json:"player" db:"player"`
	PlayerID string `json:"player_id" db:"player_id"`
	Start    int    `json:"start" db:"start"`
	End      int    `json:"end" db:"end"`
	Duration int    `json:"duration" db:"duration"`
}
