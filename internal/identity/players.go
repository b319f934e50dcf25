package identity

import (
	"github.com/fortuna/rinkside/internal/names"
)

// Players is the identity map for both teams of a game, keyed by normalized
// name.
type Players struct {
	Home map[string]Record `json:"home"`
	Away map[string]Record `json:"away"`
}

// Side returns the map for one team.
func (p *Players) Side(side Side) map[string]Record {
	if p == nil {
		return nil
	}
	if side == Home {
		return p.Home
	}
	return p.Away
}

// Lookup finds a player referenced by a rendered report. The name is tried
// first; the jersey number is the fallback since the reports sometimes
// abbreviate or misspell names.
func (p *Players) Lookup(side Side, name, number string) (Record, bool) {
	team := p.Side(side)
	if team == nil {
		return Record{}, false
	}
	if name != "" {
		if rec, ok := team[names.Normalize(name)]; ok {
			return rec, true
		}
	}
	if number != "" {
		for _, rec := range team {
			if rec.Number == number {
				return rec, true
			}
		}
	}
	return Record{}, false
}

// Count returns the number of records on both teams.
func (p *Players) Count() int {
	if p == nil {
		return 0
	}
	return len(p.Home) + len(p.Away)
}
