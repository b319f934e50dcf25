package espn

// scoreboardResponse is the part of the scoreboard payload used to find a
// game's event id.
type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Team     struct {
		ID           string `json:"id"`
		Abbreviation string `json:"abbreviation"`
		DisplayName  string `json:"displayName"`
	} `json:"team"`
}

// masterFeed is the gamecast feed. Each play is a single "~" separated
// record.
type masterFeed struct {
	Plays []string `xml:"Plays>Play"`
}
