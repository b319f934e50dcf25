// Package report scrapes the league's rendered game reports: the roster
// sheet, the play-by-play sheet and the time-on-ice sheets.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/store"
)

const DefaultBaseURL = "http://www.nhl.com/scores/htmlreports"

// Report pages, keyed by their file prefix.
const (
	pageRoster    = "RO"
	pagePlays     = "PL"
	pageAwayShift = "TV"
	pageHomeShift = "TH"
)

// Client fetches and parses rendered reports.
type Client struct {
	getter  ingest.Getter
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a report client.
func NewClient(getter ingest.Getter, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("ingest.report"),
	}
}

// PageURL builds the address of one report page. Game ids look like
// 2016020001: the first four digits are the season start year and the rest
// is the report number.
func (c *Client) PageURL(page, gameID string) (string, error) {
	if len(gameID) != 10 {
		return "", errors.Newf("malformed game id %q", gameID)
	}
	var year int
	if _, err := fmt.Sscanf(gameID[:4], "%d", &year); err != nil {
		return "", errors.Wrapf(err, "malformed game id %q", gameID)
	}
	return fmt.Sprintf("%s/%d%d/%s%s.HTM", c.baseURL, year, year+1, page, gameID[4:]), nil
}

func (c *Client) document(ctx context.Context, page, gameID string) (*goquery.Document, error) {
	u, err := c.PageURL(page, gameID)
	if err != nil {
		return nil, err
	}
	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", u)
	}
	return doc, nil
}

// Roster returns the dressed players and head coaches of a game.
func (c *Client) Roster(ctx context.Context, gameID string) (*store.Roster, error) {
	doc, err := c.document(ctx, pageRoster, gameID)
	if err != nil {
		return nil, err
	}
	roster, err := ParseRoster(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "game %s roster", gameID)
	}
	c.logger.Debug("roster parsed",
		zap.String("game_id", gameID),
		zap.Int("home", len(roster.Home)),
		zap.Int("away", len(roster.Away)))
	return roster, nil
}

// Events returns the play-by-play rows of a game.
func (c *Client) Events(ctx context.Context, gameID string, players *identity.Players, teams store.Teams, authoritativeAvailable bool) ([]store.Event, error) {
	doc, err := c.document(ctx, pagePlays, gameID)
	if err != nil {
		return nil, err
	}
	events, err := ParseEvents(doc, gameID, players, teams, authoritativeAvailable)
	if err != nil {
		return nil, errors.Wrapf(err, "game %s play-by-play", gameID)
	}
	c.logger.Debug("play-by-play parsed", zap.String("game_id", gameID), zap.Int("events", len(events)))
	return events, nil
}

// Shifts returns both teams' shifts from the time-on-ice sheets.
func (c *Client) Shifts(ctx context.Context, gameID string, teams store.Teams, players *identity.Players) ([]store.Shift, error) {
	sheets := []struct {
		page string
		side identity.Side
		team string
	}{
		{pageHomeShift, identity.Home, teams.Home},
		{pageAwayShift, identity.Away, teams.Away},
	}

	var shifts []store.Shift
	for _, sheet := range sheets {
		doc, err := c.document(ctx, sheet.page, gameID)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseShifts(doc, gameID, sheet.team, sheet.side, players)
		if err != nil {
			return nil, errors.Wrapf(err, "game %s %s time-on-ice", gameID, sheet.side)
		}
		shifts = append(shifts, parsed...)
	}
	return shifts, nil
}

// cellText returns the text of a cell with runs of whitespace, including
// the reports' non-breaking spaces, collapsed to one space.
func cellText(s *goquery.Selection) string {
	return clean(s.Text())
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
