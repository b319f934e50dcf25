package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkside/internal/store"
)

func TestEventColumnsMatchSchema(t *testing.T) {
	cols := eventColumns()
	require.Len(t, cols, len(store.EventColumns)+1)
	assert.Equal(t, "season", cols[0])
	assert.Equal(t, "game_id", cols[1])
	assert.Equal(t, "p1_id", cols[15])
	assert.Equal(t, "awayplayer1_id", cols[21])
	assert.Equal(t, []string{"xc", "yc", "home_coach", "away_coach"}, cols[len(cols)-4:])
}

func TestEventArgsNullCoordinates(t *testing.T) {
	ev := store.Event{GameID: "2016020001", Date: "2016-10-12", Period: 1, Event: "FAC"}
	args := eventArgs("20162017", ev)
	require.Len(t, args, len(eventColumns()))
	assert.Equal(t, "20162017", args[0])
	assert.Equal(t, "2016020001", args[1])
	assert.Nil(t, args[len(args)-4])
	assert.Nil(t, args[len(args)-3])

	ev.XC = sql.NullFloat64{Float64: 69, Valid: true}
	ev.YC = sql.NullFloat64{Float64: -22, Valid: true}
	args = eventArgs("20162017", ev)
	assert.Equal(t, "69", args[len(args)-4])
	assert.Equal(t, "-22", args[len(args)-3])
}

func TestShiftArgsAlignWithColumns(t *testing.T) {
	args := shiftArgs("20162017", store.Shift{GameID: "2016020001", Date: "2016-10-12", Period: 3, Player: "AUSTON MATTHEWS", Start: 10, End: 50, Duration: 40})
	cols := shiftColumns()
	require.Len(t, args, len(cols))
	assert.Equal(t, "end", cols[8])
	assert.Equal(t, "50", args[8])
}
