// Package espn reads ESPN's gamecast feed, the fallback source of rink
// coordinates for games the structured feed does not cover.
package espn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/names"
	"github.com/fortuna/rinkside/internal/store"
)

const (
	DefaultAPIBase  = "https://site.api.espn.com/apis/site/v2/sports"
	DefaultFeedBase = "http://www.espn.com/nhl/gamecast/data/masterFeed"

	sportPath = "hockey/nhl"
)

// ErrGameNotFound means the scoreboard for the date lists no game between
// the two teams.
var ErrGameNotFound = errors.New("espn game not found")

// Client reads the ESPN scoreboard and gamecast feeds.
type Client struct {
	getter   ingest.Getter
	apiBase  string
	feedBase string
	logger   *zap.Logger
}

// NewClient creates an ESPN client. Empty base URLs fall back to the public
// endpoints.
func NewClient(getter ingest.Getter, apiBase, feedBase string, logger *zap.Logger) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if feedBase == "" {
		feedBase = DefaultFeedBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		getter:   getter,
		apiBase:  strings.TrimRight(apiBase, "/"),
		feedBase: feedBase,
		logger:   logger.Named("ingest.espn"),
	}
}

// Coordinates returns the located events of the game the two teams played
// on the given date.
func (c *Client) Coordinates(ctx context.Context, date time.Time, homeTeam, awayTeam string) ([]store.CoordinateEvent, error) {
	id, err := c.EventID(ctx, date, homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}

	body, err := c.getter.Get(ctx, c.FeedURL(id))
	if err != nil {
		return nil, err
	}

	events, err := ParseFeed(body)
	if err != nil {
		return nil, errors.Wrapf(err, "espn game %s", id)
	}

	c.logger.Debug("coordinates fetched",
		zap.String("espn_id", id),
		zap.String("home", homeTeam),
		zap.String("away", awayTeam),
		zap.Int("events", len(events)))
	return events, nil
}

// EventID finds ESPN's id for a game on the date's scoreboard.
func (c *Client) EventID(ctx context.Context, date time.Time, homeTeam, awayTeam string) (string, error) {
	u := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.apiBase, sportPath, date.Format("20060102"))
	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return "", err
	}

	var board scoreboardResponse
	if err := sonic.Unmarshal(body, &board); err != nil {
		return "", errors.Wrap(err, "decode scoreboard")
	}

	for _, ev := range board.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		var home, away string
		for _, comp := range ev.Competitions[0].Competitors {
			switch comp.HomeAway {
			case "home":
				home = comp.Team.Abbreviation
			case "away":
				away = comp.Team.Abbreviation
			}
		}
		if names.SameTeam(home, homeTeam) && names.SameTeam(away, awayTeam) {
			return ev.ID, nil
		}
	}

	return "", errors.Wrapf(ErrGameNotFound, "%s at %s on %s", awayTeam, homeTeam, date.Format(store.DateLayout))
}

// FeedURL returns the gamecast address of an ESPN game.
func (c *Client) FeedURL(espnID string) string {
	q := url.Values{}
	q.Set("lang", "en")
	q.Set("isAll", "true")
	q.Set("gameId", espnID)
	return c.feedBase + "?" + q.Encode()
}
