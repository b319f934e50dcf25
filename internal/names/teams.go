package names

import "strings"

// teamAbbreviations maps the codes used by the rendered reports and ESPN to
// the codes used by the structured feed.
var teamAbbreviations = map[string]string{
	"L.A":  "LAK",
	"LA":   "LAK",
	"N.J":  "NJD",
	"NJ":   "NJD",
	"S.J":  "SJS",
	"SJ":   "SJS",
	"T.B":  "TBL",
	"TB":   "TBL",
	"WAS":  "WSH",
	"MON":  "MTL",
	"CLS":  "CBJ",
	"CLB":  "CBJ",
	"NAS":  "NSH",
	"CAL":  "CGY",
	"PHX":  "ARI",
	"UTAH": "UTA",
}

// TeamAbbreviation returns the canonical code for a team abbreviation.
// Unknown codes are returned upper-cased and trimmed.
func TeamAbbreviation(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if normalized, ok := teamAbbreviations[abbr]; ok {
		return normalized
	}
	return abbr
}

// SameTeam reports whether two team codes name the same franchise.
func SameTeam(a, b string) bool {
	a, b = TeamAbbreviation(a), TeamAbbreviation(b)
	return a != "" && a == b
}
