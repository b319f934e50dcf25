package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecordMatchesColumns(t *testing.T) {
	ev := Event{
		GameID:         "2016020001",
		Date:           "2016-10-12",
		Period:         1,
		Event:          "SHOT",
		SecondsElapsed: 75,
		AwayScore:      1,
		XC:             sql.NullFloat64{Float64: -63.5, Valid: true},
		HomeCoach:      "MIKE BABCOCK",
	}
	ev.Players[0] = PlayerRef{Name: "AUSTON MATTHEWS", ID: "8479318"}
	ev.HomeOnIce[5] = PlayerRef{Name: "FREDERIK ANDERSEN", ID: "8475883"}

	rec := ev.Record()
	require.Len(t, rec, len(EventColumns))

	col := func(name string) string {
		for i, c := range EventColumns {
			if c == name {
				return rec[i]
			}
		}
		t.Fatalf("unknown column %s", name)
		return ""
	}

	assert.Equal(t, "2016020001", col("Game_Id"))
	assert.Equal(t, "75", col("Seconds_Elapsed"))
	assert.Equal(t, "AUSTON MATTHEWS", col("p1_name"))
	assert.Equal(t, "8479318", col("p1_ID"))
	assert.Equal(t, "8475883", col("homePlayer6_id"))
	assert.Equal(t, "-63.5", col("xC"))
	assert.Equal(t, "", col("yC"))
	assert.Equal(t, "1", col("Away_Score"))
	assert.Equal(t, "MIKE BABCOCK", col("Home_Coach"))
}

func TestShiftRecordMatchesColumns(t *testing.T) {
	s := Shift{GameID: "2016020001", Period: 2, Player: "SIDNEY CROSBY", Start: 30, End: 75, Duration: 45}
	rec := s.Record()
	require.Len(t, rec, len(ShiftColumns))
	assert.Equal(t, []string{"2016020001", "", "2", "", "SIDNEY CROSBY", "", "30", "75", "45"}, rec)
}
