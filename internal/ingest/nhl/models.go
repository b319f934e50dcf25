package nhl

// scheduleResponse is the stats API schedule document.
type scheduleResponse struct {
	Dates []struct {
		Date  string `json:"date"`
		Games []struct {
			GamePk   int64  `json:"gamePk"`
			GameType string `json:"gameType"`
			GameDate string `json:"gameDate"`
		} `json:"games"`
	} `json:"dates"`
}

// liveFeed is the subset of the live game feed the scraper reads.
type liveFeed struct {
	GameData struct {
		Teams struct {
			Home feedTeam `json:"home"`
			Away feedTeam `json:"away"`
		} `json:"teams"`
		Players map[string]feedPlayer `json:"players"`
	} `json:"gameData"`
	LiveData struct {
		Plays struct {
			AllPlays []feedPlay `json:"allPlays"`
		} `json:"plays"`
	} `json:"liveData"`
}

type feedTeam struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	TriCode      string `json:"triCode"`
}

type feedPlayer struct {
	ID              int64  `json:"id"`
	FullName        string `json:"fullName"`
	PrimaryPosition struct {
		Code string `json:"code"`
	} `json:"primaryPosition"`
}

type feedPlay struct {
	Result struct {
		EventTypeID string `json:"eventTypeId"`
	} `json:"result"`
	About struct {
		Period     int    `json:"period"`
		PeriodTime string `json:"periodTime"`
	} `json:"about"`
	Coordinates struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"coordinates"`
}

// shiftChart is the shift chart document.
type shiftChart struct {
	Data []struct {
		GameID     int64  `json:"gameId"`
		Period     int    `json:"period"`
		TeamAbbrev string `json:"teamAbbrev"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		PlayerID   int64  `json:"playerId"`
		StartTime  string `json:"startTime"`
		EndTime    string `json:"endTime"`
		Duration   string `json:"duration"`
		TypeCode   int    `json:"typeCode"`
	} `json:"data"`
	Total int `json:"total"`
}
