package store

import (
	"database/sql"
	"strconv"
)

// EventColumns is the fixed output order of the play-by-play table.
var EventColumns = []string{
	"Game_Id", "Date", "Period", "Event", "Description", "Time_Elapsed", "Seconds_Elapsed", "Strength",
	"Ev_Zone", "Type", "Ev_Team", "Away_Team", "Home_Team",
	"p1_name", "p1_ID", "p2_name", "p2_ID", "p3_name", "p3_ID",
	"awayPlayer1", "awayPlayer1_id", "awayPlayer2", "awayPlayer2_id", "awayPlayer3", "awayPlayer3_id",
	"awayPlayer4", "awayPlayer4_id", "awayPlayer5", "awayPlayer5_id", "awayPlayer6", "awayPlayer6_id",
	"homePlayer1", "homePlayer1_id", "homePlayer2", "homePlayer2_id", "homePlayer3", "homePlayer3_id",
	"homePlayer4", "homePlayer4_id", "homePlayer5", "homePlayer5_id", "homePlayer6", "homePlayer6_id",
	"Away_Goalie", "Home_Goalie", "Away_Skaters", "Home_Skaters", "Away_Score", "Home_Score",
	"xC", "yC", "Home_Coach", "Away_Coach",
}

// ShiftColumns is the fixed output order of the shift table.
var ShiftColumns = []string{
	"Game_Id", "Date", "Period", "Team", "Player", "Player_Id", "Start", "End", "Duration",
}

// Record flattens the event into EventColumns order.
func (e Event) Record() []string {
	rec := make([]string, 0, len(EventColumns))
	rec = append(rec,
		e.GameID, e.Date, strconv.Itoa(e.Period), e.Event, e.Description, e.TimeElapsed,
		strconv.Itoa(e.SecondsElapsed), e.Strength, e.Zone, e.Type, e.EvTeam, e.AwayTeam, e.HomeTeam,
	)
	for _, p := range e.Players {
		rec = append(rec, p.Name, p.ID)
	}
	for _, p := range e.AwayOnIce {
		rec = append(rec, p.Name, p.ID)
	}
	for _, p := range e.HomeOnIce {
		rec = append(rec, p.Name, p.ID)
	}
	rec = append(rec,
		e.AwayGoalie, e.HomeGoalie,
		strconv.Itoa(e.AwaySkaters), strconv.Itoa(e.HomeSkaters),
		strconv.Itoa(e.AwayScore), strconv.Itoa(e.HomeScore),
		formatCoordinate(e.XC), formatCoordinate(e.YC),
		e.HomeCoach, e.AwayCoach,
	)
	return rec
}

// Record flattens the shift into ShiftColumns order.
func (s Shift) Record() []string {
	return []string{
		s.GameID, s.Date, strconv.Itoa(s.Period), s.Team, s.Player, s.PlayerID,
		strconv.Itoa(s.Start), strconv.Itoa(s.End), strconv.Itoa(s.Duration),
	}
}

func formatCoordinate(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
