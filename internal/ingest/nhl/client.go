// Package nhl reads the league's structured stats feeds: the season
// schedule, the live game feed and the shift chart.
package nhl

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/names"
	"github.com/fortuna/rinkside/internal/store"
)

const (
	DefaultStatsBase  = "https://statsapi.web.nhl.com/api/v1"
	DefaultShiftsBase = "https://api.nhle.com/stats/rest/en/shiftcharts"

	// shiftTypeCode marks a real shift; other codes are goal markers.
	shiftTypeCode = 517
)

// ErrEmptyShiftChart means the chart exists but lists no shifts, which is
// the usual state for older seasons.
var ErrEmptyShiftChart = errors.New("shift chart is empty")

// skippedPlays are feed bookkeeping entries the rendered report never
// lists.
var skippedPlays = map[string]bool{
	"GAME_SCHEDULED":  true,
	"GAME_READY":      true,
	"PERIOD_READY":    true,
	"PERIOD_OFFICIAL": true,
	"GAME_OFFICIAL":   true,

	"EARLY_INT_START":      true,
	"EARLY_INT_END":        true,
	"EMERGENCY_GOALTENDER": true,
}

var playTypes = map[string]string{
	"FACEOFF":           "FAC",
	"HIT":               "HIT",
	"GIVEAWAY":          "GIVE",
	"TAKEAWAY":          "TAKE",
	"SHOT":              "SHOT",
	"MISSED_SHOT":       "MISS",
	"BLOCKED_SHOT":      "BLOCK",
	"GOAL":              "GOAL",
	"PENALTY":           "PENL",
	"STOP":              "STOP",
	"PERIOD_START":      "PSTR",
	"PERIOD_END":        "PEND",
	"GAME_END":          "GEND",
	"SHOOTOUT_COMPLETE": "SOC",
	"CHALLENGE":         "CHL",
}

// Client reads the structured feeds.
type Client struct {
	getter     ingest.Getter
	statsBase  string
	shiftsBase string
	logger     *zap.Logger
}

// NewClient creates a client. Empty base URLs fall back to the public
// endpoints.
func NewClient(getter ingest.Getter, statsBase, shiftsBase string, logger *zap.Logger) *Client {
	if statsBase == "" {
		statsBase = DefaultStatsBase
	}
	if shiftsBase == "" {
		shiftsBase = DefaultShiftsBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		getter:     getter,
		statsBase:  strings.TrimRight(statsBase, "/"),
		shiftsBase: strings.TrimRight(shiftsBase, "/"),
		logger:     logger.Named("ingest.nhl"),
	}
}

// Schedule lists the regular season and playoff games of the season that
// starts in the given year, in schedule order.
func (c *Client) Schedule(ctx context.Context, season int) ([]store.ScheduledGame, error) {
	u := fmt.Sprintf("%s/schedule?startDate=%d-09-01&endDate=%d-08-31", c.statsBase, season, season+1)
	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp scheduleResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode schedule")
	}

	seen := make(map[string]bool)
	var games []store.ScheduledGame
	for _, day := range resp.Dates {
		date, err := time.Parse(store.DateLayout, day.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "schedule date %q", day.Date)
		}
		for _, g := range day.Games {
			if g.GameType != "R" && g.GameType != "P" {
				continue
			}
			id := strconv.FormatInt(g.GamePk, 10)
			// Postponed games are listed again on their new date; keep the first.
			if seen[id] {
				continue
			}
			seen[id] = true
			games = append(games, store.ScheduledGame{GameID: id, Date: date})
		}
	}

	c.logger.Info("schedule loaded", zap.Int("season", season), zap.Int("games", len(games)))
	return games, nil
}

// Game returns the teams, players and plays of a game.
func (c *Client) Game(ctx context.Context, gameID string) (*store.AuthoritativeGame, error) {
	body, err := c.getter.Get(ctx, fmt.Sprintf("%s/game/%s/feed/live", c.statsBase, url.PathEscape(gameID)))
	if err != nil {
		return nil, err
	}

	var feed liveFeed
	if err := sonic.Unmarshal(body, &feed); err != nil {
		return nil, errors.Wrapf(err, "decode live feed for %s", gameID)
	}
	return convertFeed(gameID, &feed)
}

func convertFeed(gameID string, feed *liveFeed) (*store.AuthoritativeGame, error) {
	home := teamCode(feed.GameData.Teams.Home)
	away := teamCode(feed.GameData.Teams.Away)
	if home == "" || away == "" {
		return nil, errors.Newf("game %s: live feed has no team abbreviations", gameID)
	}

	game := &store.AuthoritativeGame{
		Teams:   store.Teams{Home: home, Away: away},
		Players: make([]store.AuthoritativePlayer, 0, len(feed.GameData.Players)),
	}

	for _, p := range feed.GameData.Players {
		id := ""
		if p.ID != 0 {
			id = strconv.FormatInt(p.ID, 10)
		}
		game.Players = append(game.Players, store.AuthoritativePlayer{
			Name:     p.FullName,
			ID:       id,
			Position: p.PrimaryPosition.Code,
		})
	}

	for i, p := range feed.LiveData.Plays.AllPlays {
		if skippedPlays[p.Result.EventTypeID] {
			continue
		}
		secs, err := ingest.ClockSeconds(p.About.PeriodTime)
		if err != nil {
			return nil, errors.Wrapf(err, "game %s: play %d", gameID, i)
		}
		event, ok := playTypes[p.Result.EventTypeID]
		if !ok {
			event = p.Result.EventTypeID
		}
		game.Plays = append(game.Plays, store.Play{
			Event:          event,
			Period:         p.About.Period,
			SecondsElapsed: secs,
			XC:             nullable(p.Coordinates.X),
			YC:             nullable(p.Coordinates.Y),
		})
	}

	return game, nil
}

// Shifts returns the shift chart of a game. Player ids come from the chart
// itself; players is only used to fill in the rare blank id.
func (c *Client) Shifts(ctx context.Context, gameID string, _ store.Teams, players *identity.Players) ([]store.Shift, error) {
	u := fmt.Sprintf("%s?cayenneExp=gameId=%s", c.shiftsBase, url.QueryEscape(gameID))
	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart shiftChart
	if err := sonic.Unmarshal(body, &chart); err != nil {
		return nil, errors.Wrapf(err, "decode shift chart for %s", gameID)
	}

	shifts := make([]store.Shift, 0, len(chart.Data))
	for i, row := range chart.Data {
		if row.TypeCode != shiftTypeCode {
			continue
		}
		start, err := ingest.ClockSeconds(row.StartTime)
		if err != nil {
			return nil, errors.Wrapf(err, "game %s: shift %d start", gameID, i)
		}
		end, err := ingest.ClockSeconds(row.EndTime)
		if err != nil {
			return nil, errors.Wrapf(err, "game %s: shift %d end", gameID, i)
		}

		name := names.Normalize(row.FirstName + " " + row.LastName)
		var id string
		if row.PlayerID != 0 {
			id = strconv.FormatInt(row.PlayerID, 10)
		} else {
			id = lookupID(players, name)
		}

		shifts = append(shifts, store.Shift{
			GameID:   gameID,
			Period:   row.Period,
			Team:     names.TeamAbbreviation(row.TeamAbbrev),
			Player:   name,
			PlayerID: id,
			Start:    start,
			End:      end,
			Duration: end - start,
		})
	}

	if len(shifts) == 0 {
		return nil, errors.Wrapf(ErrEmptyShiftChart, "game %s", gameID)
	}
	return shifts, nil
}

func lookupID(players *identity.Players, name string) string {
	if players == nil {
		return identity.Unresolved
	}
	for _, side := range []identity.Side{identity.Home, identity.Away} {
		if rec, ok := players.Lookup(side, name, ""); ok {
			return rec.StableID
		}
	}
	return identity.Unresolved
}

func teamCode(t feedTeam) string {
	code := t.Abbreviation
	if code == "" {
		code = t.TriCode
	}
	return names.TeamAbbreviation(code)
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
