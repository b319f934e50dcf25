// Package identity maps the names printed on a game's roster report to the
// stable player identifiers issued by the structured feed.
package identity

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/names"
	"github.com/fortuna/rinkside/internal/store"
)

// Unresolved is the stable id given to a roster entry the structured feed
// does not know about.
const Unresolved = "NA"

// ErrIdentityResolution marks a structural failure of the resolver, as
// opposed to an individual player left Unresolved.
var ErrIdentityResolution = errors.New("identity resolution failed")

// Side identifies which team a player dressed for.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// Record is the resolved identity of one dressed player.
type Record struct {
	Name     string `json:"name"`
	StableID string `json:"stable_id"`
	Number   string `json:"number"`
	Position string `json:"position"`
	Side     Side   `json:"side"`
}

// Resolved reports whether the record carries a stable id.
func (r Record) Resolved() bool {
	return r.StableID != Unresolved
}

// Missing is a non-goaltender roster entry with no stable id.
type Missing struct {
	GameID string            `json:"game_id"`
	Side   Side              `json:"side"`
	Entry  store.RosterEntry `json:"entry"`
}

// Index maps normalized names to stable ids.
type Index map[string]string

// NewIndex builds the lookup table from the structured feed's player list.
// Players the feed lists without an id are indexed as Unresolved; they
// still count as matched.
func NewIndex(players []store.AuthoritativePlayer) Index {
	idx := make(Index, len(players))
	for _, p := range players {
		name := names.Normalize(p.Name)
		if name == "" {
			continue
		}
		id := p.ID
		if id == "" {
			id = Unresolved
		}
		idx[name] = id
	}
	return idx
}

// Resolver cross-references roster entries against an Index.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger.Named("identity")}
}

// Resolve builds the per-game identity map. Only a missing or empty roster
// is an error. Individual misses never fail the call: skaters come back
// Unresolved and are listed in the returned Missing slice, goaltenders come
// back Unresolved without being listed. Entries with no usable name are
// keyed by jersey number.
func (r *Resolver) Resolve(gameID string, index Index, roster *store.Roster) (*Players, []Missing, error) {
	if roster == nil {
		return nil, nil, errors.Wrapf(ErrIdentityResolution, "game %s: no roster", gameID)
	}
	if len(roster.Home) == 0 && len(roster.Away) == 0 {
		return nil, nil, errors.Wrapf(ErrIdentityResolution, "game %s: roster lists no players", gameID)
	}

	players := &Players{
		Home: make(map[string]Record, len(roster.Home)),
		Away: make(map[string]Record, len(roster.Away)),
	}
	var missing []Missing

	sides := []struct {
		side    Side
		entries []store.RosterEntry
		out     map[string]Record
	}{
		{Home, roster.Home, players.Home},
		{Away, roster.Away, players.Away},
	}

	for _, s := range sides {
		for _, entry := range s.entries {
			name := names.Normalize(entry.Name)

			rec := Record{
				Name:     name,
				StableID: Unresolved,
				Number:   entry.Number,
				Position: entry.Position,
				Side:     s.side,
			}

			if id, ok := index[name]; ok && name != "" {
				rec.StableID = id
			} else if !entry.IsGoalie() {
				// Backup goalies routinely dress without playing; only skaters are worth a look.
				missing = append(missing, Missing{GameID: gameID, Side: s.side, Entry: entry})
				r.logger.Debug("player missing stable id",
					zap.String("game_id", gameID),
					zap.String("side", string(s.side)),
					zap.String("name", entry.Name),
					zap.String("number", entry.Number))
			}

			key := name
			if key == "" {
				key = "#" + entry.Number
			}
			s.out[key] = rec
		}
	}

	return players, missing, nil
}
