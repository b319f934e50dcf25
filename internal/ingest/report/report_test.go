package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/store"
)

const testGameID = "2016020001"

var testTeams = store.Teams{Home: "TOR", Away: "OTT"}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return body
}

func fixtureDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fixture(t, name))))
	require.NoError(t, err)
	return doc
}

func testPlayers() *identity.Players {
	rec := func(side identity.Side, name, id, number, pos string) identity.Record {
		return identity.Record{Name: name, StableID: id, Number: number, Position: pos, Side: side}
	}
	return &identity.Players{
		Home: map[string]identity.Record{
			"AUSTON MATTHEWS":   rec(identity.Home, "AUSTON MATTHEWS", "8479318", "34", "C"),
			"MITCHELL MARNER":   rec(identity.Home, "MITCHELL MARNER", "8478483", "16", "R"),
			"MORGAN RIELLY":     rec(identity.Home, "MORGAN RIELLY", "8476853", "44", "D"),
			"FREDERIK ANDERSEN": rec(identity.Home, "FREDERIK ANDERSEN", "8475883", "31", "G"),
		},
		Away: map[string]identity.Record{
			"DERICK BRASSARD": rec(identity.Away, "DERICK BRASSARD", "8475250", "19", "C"),
			"ERIK KARLSSON":   rec(identity.Away, "ERIK KARLSSON", "8474578", "65", "D"),
			"CRAIG ANDERSON":  rec(identity.Away, "CRAIG ANDERSON", "8467950", "41", "G"),
		},
	}
}

type fakeGetter map[string][]byte

func (f fakeGetter) Get(_ context.Context, url string) ([]byte, error) {
	if body, ok := f[url]; ok {
		return body, nil
	}
	return nil, errors.Newf("unexpected url %s", url)
}

func TestPageURL(t *testing.T) {
	c := NewClient(nil, "http://reports.test/", nil)

	u, err := c.PageURL("PL", testGameID)
	require.NoError(t, err)
	assert.Equal(t, "http://reports.test/20162017/PL020001.HTM", u)

	_, err = c.PageURL("PL", "201602")
	assert.Error(t, err)
	_, err = c.PageURL("PL", "abcd020001")
	assert.Error(t, err)

	u, err = NewClient(nil, "", nil).PageURL("RO", "2019030415")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/20192020/RO030415.HTM", u)
}

func TestParseRoster(t *testing.T) {
	roster, err := ParseRoster(fixtureDoc(t, "RO020001.HTM"))
	require.NoError(t, err)

	require.Len(t, roster.Away, 4)
	require.Len(t, roster.Home, 4)
	assert.Equal(t, store.RosterEntry{Number: "19", Position: "C", Name: "DERICK BRASSARD"}, roster.Away[0])
	assert.Equal(t, "ERIK KARLSSON", roster.Away[1].Name)
	assert.True(t, roster.Away[2].IsGoalie())
	assert.Equal(t, "MORGAN RIELLY", roster.Home[2].Name)
	assert.Equal(t, "GUY BOUCHER", roster.AwayCoach)
	assert.Equal(t, "MIKE BABCOCK", roster.HomeCoach)

	for _, e := range append(roster.Away, roster.Home...) {
		assert.NotEqual(t, "KYLE TURRIS", e.Name, "scratches are not dressed")
	}
}

func TestParseRosterRejectsOtherPages(t *testing.T) {
	_, err := ParseRoster(fixtureDoc(t, "TH020001.HTM"))
	assert.Error(t, err)
}

func TestParseEventsWithFeed(t *testing.T) {
	events, err := ParseEvents(fixtureDoc(t, "PL020001.HTM"), testGameID, testPlayers(), testTeams, true)
	require.NoError(t, err)

	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Event
	}
	assert.Equal(t, []string{"PSTR", "FAC", "SHOT", "GOAL", "PENL", "BLOCK", "GOAL", "GEND"}, kinds)

	fac := events[1]
	assert.Equal(t, testGameID, fac.GameID)
	assert.Equal(t, "TOR", fac.EvTeam)
	assert.Equal(t, "Neu", fac.Zone)
	assert.Equal(t, "EV", fac.Strength)
	assert.Equal(t, "0:00", fac.TimeElapsed)
	assert.Equal(t, store.PlayerRef{Name: "AUSTON MATTHEWS", ID: "8479318"}, fac.Players[0], "winner first")
	assert.Equal(t, store.PlayerRef{Name: "DERICK BRASSARD", ID: "8475250"}, fac.Players[1])
	assert.Equal(t, "CRAIG ANDERSON", fac.AwayGoalie)
	assert.Equal(t, "FREDERIK ANDERSEN", fac.HomeGoalie)
	assert.Equal(t, 2, fac.AwaySkaters)
	assert.Equal(t, 3, fac.HomeSkaters)
	assert.Equal(t, store.PlayerRef{Name: "ERIK KARLSSON", ID: "8474578"}, fac.AwayOnIce[1])
	assert.Equal(t, store.PlayerRef{Name: "FREDERIK ANDERSEN", ID: "8475883"}, fac.HomeOnIce[3])
	assert.Equal(t, store.PlayerRef{}, fac.HomeOnIce[4])

	shot := events[2]
	assert.Equal(t, 75, shot.SecondsElapsed)
	assert.Equal(t, "Wrist", shot.Type)
	assert.Equal(t, "Off", shot.Zone)
	assert.Equal(t, "AUSTON MATTHEWS", shot.Players[0].Name)
	assert.Equal(t, 0, shot.HomeScore)

	goal := events[3]
	assert.Equal(t, "TOR #34 MATTHEWS(1), Wrist, Off. Zone, 15 ft. Assists: #16 MARNER(1); #44 RIELLY(1)", goal.Description)
	assert.Equal(t, "MITCHELL MARNER", goal.Players[1].Name)
	assert.Equal(t, "MORGAN RIELLY", goal.Players[2].Name)
	assert.Equal(t, 1, goal.HomeScore)
	assert.Equal(t, 0, goal.AwayScore)

	penl := events[4]
	assert.Equal(t, "Hooking", penl.Type)
	assert.Equal(t, "Def", penl.Zone)
	assert.Equal(t, "MORGAN RIELLY", penl.Players[0].Name)
	assert.Equal(t, "ERIK KARLSSON", penl.Players[1].Name)

	block := events[5]
	assert.Equal(t, "OTT", block.EvTeam)
	assert.Equal(t, "Slap", block.Type)
	assert.Equal(t, "ERIK KARLSSON", block.Players[0].Name)
	assert.Equal(t, "MORGAN RIELLY", block.Players[1].Name)

	shootout := events[6]
	assert.Equal(t, 5, shootout.Period)
	assert.Equal(t, "OTT", shootout.EvTeam)
	assert.Equal(t, 0, shootout.AwayScore, "shootout goals are not counted")
	assert.Equal(t, 1, shootout.HomeScore)

	assert.Equal(t, "", events[7].EvTeam)
}

func TestParseEventsWithoutFeedKeepsBookkeeping(t *testing.T) {
	events, err := ParseEvents(fixtureDoc(t, "PL020001.HTM"), testGameID, testPlayers(), testTeams, false)
	require.NoError(t, err)
	require.Len(t, events, 10)
	assert.Equal(t, "PGSTR", events[0].Event)
	assert.Equal(t, "GOFF", events[9].Event)
}

func TestParseEventsUnresolvedPlayers(t *testing.T) {
	events, err := ParseEvents(fixtureDoc(t, "PL020001.HTM"), testGameID, nil, testTeams, true)
	require.NoError(t, err)

	fac := events[1]
	assert.Equal(t, store.PlayerRef{Name: "DERICK BRASSARD", ID: identity.Unresolved}, fac.AwayOnIce[0])
	assert.Equal(t, identity.Unresolved, fac.Players[0].ID)
}

func TestParseEventsPlayoffOvertimeCounts(t *testing.T) {
	events, err := ParseEvents(fixtureDoc(t, "PL020001.HTM"), "2016030111", testPlayers(), testTeams, true)
	require.NoError(t, err)
	assert.Equal(t, 1, events[6].AwayScore, "period five is regular overtime in the playoffs")
}

func TestParseEventsEmptySheet(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><table></table></body></html>"))
	require.NoError(t, err)
	_, err = ParseEvents(doc, testGameID, nil, testTeams, true)
	assert.Error(t, err)
}

func TestParseShifts(t *testing.T) {
	shifts, err := ParseShifts(fixtureDoc(t, "TH020001.HTM"), testGameID, "TOR", identity.Home, testPlayers())
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	assert.Equal(t, store.Shift{
		GameID: testGameID, Period: 1, Team: "TOR",
		Player: "AUSTON MATTHEWS", PlayerID: "8479318",
		Start: 0, End: 41, Duration: 41,
	}, shifts[0])

	ot := shifts[1]
	assert.Equal(t, 4, ot.Period)
	assert.Equal(t, 70, ot.Start)
	assert.Equal(t, 125, ot.End)
	assert.Equal(t, 55, ot.Duration)

	assert.Equal(t, "MYSTERY CALLUP", shifts[2].Player)
	assert.Equal(t, identity.Unresolved, shifts[2].PlayerID)
	assert.Equal(t, 2, shifts[2].Period)
}

func TestParseShiftsEmptySheet(t *testing.T) {
	_, err := ParseShifts(fixtureDoc(t, "RO020001.HTM"), testGameID, "TOR", identity.Home, nil)
	assert.Error(t, err)
}

func TestClient(t *testing.T) {
	base := "http://reports.test"
	getter := fakeGetter{
		base + "/20162017/RO020001.HTM": fixture(t, "RO020001.HTM"),
		base + "/20162017/PL020001.HTM": fixture(t, "PL020001.HTM"),
		base + "/20162017/TH020001.HTM": fixture(t, "TH020001.HTM"),
		base + "/20162017/TV020001.HTM": fixture(t, "TV020001.HTM"),
	}
	c := NewClient(getter, base, nil)
	ctx := context.Background()

	roster, err := c.Roster(ctx, testGameID)
	require.NoError(t, err)
	assert.Equal(t, "MIKE BABCOCK", roster.HomeCoach)

	events, err := c.Events(ctx, testGameID, testPlayers(), testTeams, true)
	require.NoError(t, err)
	assert.Len(t, events, 8)

	shifts, err := c.Shifts(ctx, testGameID, testTeams, testPlayers())
	require.NoError(t, err)
	require.Len(t, shifts, 4)
	assert.Equal(t, "TOR", shifts[0].Team)
	assert.Equal(t, store.Shift{
		GameID: testGameID, Period: 1, Team: "OTT",
		Player: "ERIK KARLSSON", PlayerID: "8474578",
		Start: 0, End: 62, Duration: 62,
	}, shifts[3])
}

func TestClientPropagatesFetchErrors(t *testing.T) {
	c := NewClient(fakeGetter{}, "http://reports.test", nil)
	_, err := c.Roster(context.Background(), testGameID)
	assert.Error(t, err)

	_, err = c.Shifts(context.Background(), testGameID, testTeams, nil)
	assert.Error(t, err)
}
