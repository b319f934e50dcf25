package nhl

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/store"
)

type fakeGetter map[string]string

func (f fakeGetter) Get(_ context.Context, url string) ([]byte, error) {
	for prefix, body := range f {
		if strings.HasPrefix(url, prefix) {
			return []byte(body), nil
		}
	}
	return nil, errors.Newf("unexpected url %s", url)
}

const scheduleJSON = `{
  "dates": [
    {"date": "2016-10-12", "games": [
      {"gamePk": 2016020001, "gameType": "R", "gameDate": "2016-10-12T23:00:00Z"},
      {"gamePk": 2016010099, "gameType": "PR", "gameDate": "2016-10-12T23:00:00Z"},
      {"gamePk": 2016020002, "gameType": "R", "gameDate": "2016-10-12T23:30:00Z"}
    ]},
    {"date": "2016-10-13", "games": [
      {"gamePk": 2016020001, "gameType": "R", "gameDate": "2016-10-13T23:00:00Z"},
      {"gamePk": 2016030111, "gameType": "P", "gameDate": "2017-04-12T23:00:00Z"}
    ]}
  ]
}`

const liveFeedJSON = `{
  "gameData": {
    "teams": {
      "home": {"id": 10, "abbreviation": "TOR"},
      "away": {"id": 9, "abbreviation": "OTT"}
    },
    "players": {
      "ID8479318": {"id": 8479318, "fullName": "Auston Matthews", "primaryPosition": {"code": "C"}},
      "ID8467950": {"id": 8467950, "fullName": "Craig Anderson", "primaryPosition": {"code": "G"}},
      "ID0": {"fullName": "Mystery Callup", "primaryPosition": {"code": "D"}}
    }
  },
  "liveData": {
    "plays": {
      "allPlays": [
        {"result": {"eventTypeId": "GAME_SCHEDULED"}, "about": {"period": 1, "periodTime": "00:00"}, "coordinates": {}},
        {"result": {"eventTypeId": "PERIOD_START"}, "about": {"period": 1, "periodTime": "00:00"}, "coordinates": {}},
        {"result": {"eventTypeId": "FACEOFF"}, "about": {"period": 1, "periodTime": "00:00"}, "coordinates": {"x": 0.0, "y": 0.0}},
        {"result": {"eventTypeId": "SHOT"}, "about": {"period": 1, "periodTime": "01:15"}, "coordinates": {"x": -63.0, "y": 12.0}}
      ]
    }
  }
}`

func TestSchedule(t *testing.T) {
	c := NewClient(fakeGetter{DefaultStatsBase + "/schedule": scheduleJSON}, "", "", nil)

	games, err := c.Schedule(context.Background(), 2016)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, "2016020001", games[0].GameID)
	assert.Equal(t, "2016-10-12", games[0].DateString())
	assert.Equal(t, "2016020002", games[1].GameID)
	assert.Equal(t, "2016030111", games[2].GameID)
	assert.Equal(t, "2016-10-13", games[2].DateString())
}

func TestGame(t *testing.T) {
	c := NewClient(fakeGetter{"http://stats.test/game/2016020001/feed/live": liveFeedJSON}, "http://stats.test/", "", nil)

	game, err := c.Game(context.Background(), "2016020001")
	require.NoError(t, err)

	assert.Equal(t, "TOR", game.Teams.Home)
	assert.Equal(t, "OTT", game.Teams.Away)
	require.Len(t, game.Players, 3)

	idx := identity.NewIndex(game.Players)
	assert.Equal(t, "8479318", idx["AUSTON MATTHEWS"])
	assert.Equal(t, identity.Unresolved, idx["MYSTERY CALLUP"])

	require.Len(t, game.Plays, 3)
	assert.Equal(t, "PSTR", game.Plays[0].Event)
	assert.False(t, game.Plays[0].XC.Valid)
	assert.Equal(t, "FAC", game.Plays[1].Event)
	assert.True(t, game.Plays[1].XC.Valid)
	assert.Equal(t, 75, game.Plays[2].SecondsElapsed)
	assert.Equal(t, -63.0, game.Plays[2].XC.Float64)
	assert.Equal(t, 12.0, game.Plays[2].YC.Float64)
}

func TestGameWithoutPlays(t *testing.T) {
	body := `{"gameData": {"teams": {"home": {"abbreviation": "N.J"}, "away": {"abbreviation": "L.A"}}, "players": {}}, "liveData": {"plays": {"allPlays": []}}}`
	c := NewClient(fakeGetter{DefaultStatsBase: body}, "", "", nil)

	game, err := c.Game(context.Background(), "2010020001")
	require.NoError(t, err)
	assert.Empty(t, game.Plays)
	assert.Equal(t, "NJD", game.Teams.Home)
	assert.Equal(t, "LAK", game.Teams.Away)
}

func TestGameRejectsMissingTeams(t *testing.T) {
	c := NewClient(fakeGetter{DefaultStatsBase: `{"gameData": {}, "liveData": {}}`}, "", "", nil)
	_, err := c.Game(context.Background(), "2016020001")
	assert.Error(t, err)
}

func TestShifts(t *testing.T) {
	body := `{"data": [
	  {"gameId": 2016020001, "period": 1, "teamAbbrev": "TOR", "firstName": "Auston", "lastName": "Matthews", "playerId": 8479318, "startTime": "00:00", "endTime": "00:41", "duration": "00:41", "typeCode": 517},
	  {"gameId": 2016020001, "period": 1, "teamAbbrev": "TOR", "firstName": "Auston", "lastName": "Matthews", "playerId": 8479318, "startTime": "08:21", "endTime": "08:21", "typeCode": 505},
	  {"gameId": 2016020001, "period": 2, "teamAbbrev": "OTT", "firstName": "Erik", "lastName": "Karlsson", "playerId": 0, "startTime": "1:10", "endTime": "2:05", "typeCode": 517}
	], "total": 3}`
	c := NewClient(fakeGetter{DefaultShiftsBase: body}, "", "", nil)

	players := &identity.Players{
		Home: map[string]identity.Record{},
		Away: map[string]identity.Record{"ERIK KARLSSON": {Name: "ERIK KARLSSON", StableID: "8474578", Number: "65"}},
	}

	shifts, err := c.Shifts(context.Background(), "2016020001", store.Teams{Home: "TOR", Away: "OTT"}, players)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	assert.Equal(t, "AUSTON MATTHEWS", shifts[0].Player)
	assert.Equal(t, "8479318", shifts[0].PlayerID)
	assert.Equal(t, 41, shifts[0].Duration)

	assert.Equal(t, "8474578", shifts[1].PlayerID)
	assert.Equal(t, 70, shifts[1].Start)
	assert.Equal(t, 125, shifts[1].End)
	assert.Equal(t, "OTT", shifts[1].Team)
}

func TestShiftsEmptyChartIsError(t *testing.T) {
	c := NewClient(fakeGetter{DefaultShiftsBase: `{"data": [], "total": 0}`}, "", "", nil)
	_, err := c.Shifts(context.Background(), "2008020001", store.Teams{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyShiftChart))
}
