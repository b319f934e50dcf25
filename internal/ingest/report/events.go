package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/names"
	"github.com/fortuna/rinkside/internal/store"
)

// reportOnly are rows the structured feed never lists. They are dropped
// when the two sources are merged row by row.
var reportOnly = map[string]bool{
	"PGSTR":  true,
	"PGEND":  true,
	"ANTHEM": true,
	"GOFF":   true,
	"EGT":    true,
	"EGPID":  true,
	"EISTR":  true,
	"EIEND":  true,
}

// shotEvents carry the shot type as the second comma-separated field.
var shotEvents = map[string]bool{
	"SHOT":  true,
	"MISS":  true,
	"GOAL":  true,
	"BLOCK": true,
}

var (
	playerRefPattern = regexp.MustCompile(`(?:\b([A-Z]\.[A-Z]|[A-Z]{2,4})\s+)?#(\d+)`)
	zonePattern      = regexp.MustCompile(`\b(Off|Def|Neu)\. Zone`)
	penaltyPattern   = regexp.MustCompile(`([A-Z][a-z][A-Za-z ./\-]*?)\s*\(\d+ min\)`)
)

// sideRef is a player reference together with the team it belongs to.
type sideRef struct {
	ref  store.PlayerRef
	side identity.Side
}

type eventParser struct {
	gameID   string
	players  *identity.Players
	teams    store.Teams
	shootout int
}

// ParseEvents reads a play-by-play sheet into event rows. Scores are the
// running score after the row's event; shootout goals are not counted.
func ParseEvents(doc *goquery.Document, gameID string, players *identity.Players, teams store.Teams, authoritativeAvailable bool) ([]store.Event, error) {
	p := &eventParser{gameID: gameID, players: players, teams: teams}
	if len(gameID) == 10 && gameID[4:6] == "02" {
		p.shootout = 5
	}

	var (
		events    []store.Event
		awayScore int
		homeScore int
		parseErr  error
	)

	doc.Find("tr.evenColor").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() < 8 {
			return true
		}

		ev, err := p.row(tds)
		if err != nil {
			parseErr = errors.Wrapf(err, "row %d", i)
			return false
		}
		if authoritativeAvailable && reportOnly[ev.Event] {
			return true
		}

		if ev.Event == "GOAL" && ev.Period != p.shootout {
			switch ev.EvTeam {
			case teams.Home:
				homeScore++
			case teams.Away:
				awayScore++
			}
		}
		ev.AwayScore, ev.HomeScore = awayScore, homeScore

		events = append(events, ev)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	if len(events) == 0 {
		return nil, errors.New("no event rows")
	}
	return events, nil
}

func (p *eventParser) row(tds *goquery.Selection) (store.Event, error) {
	ev := store.Event{
		GameID:   p.gameID,
		AwayTeam: p.teams.Away,
		HomeTeam: p.teams.Home,
	}

	period, err := strconv.Atoi(cellText(tds.Eq(1)))
	if err != nil {
		return ev, errors.Wrapf(err, "period %q", cellText(tds.Eq(1)))
	}
	ev.Period = period
	ev.Strength = cellText(tds.Eq(2))

	ev.TimeElapsed = firstText(tds.Eq(3))
	secs, err := ingest.ClockSeconds(ev.TimeElapsed)
	if err != nil {
		return ev, err
	}
	ev.SecondsElapsed = secs

	ev.Event = strings.ToUpper(cellText(tds.Eq(4)))
	ev.Description = lineText(tds.Eq(5))

	away := p.onIce(tds.Eq(6), identity.Away, &ev.AwayOnIce)
	home := p.onIce(tds.Eq(7), identity.Home, &ev.HomeOnIce)
	ev.AwayGoalie, ev.AwaySkaters = away.goalie, away.skaters
	ev.HomeGoalie, ev.HomeSkaters = home.goalie, home.skaters

	p.describe(&ev)
	return ev, nil
}

// describe fills the columns derived from the description text.
func (p *eventParser) describe(ev *store.Event) {
	desc := ev.Description
	if fields := strings.Fields(desc); len(fields) > 0 {
		if p.side(fields[0]) != "" {
			ev.EvTeam = names.TeamAbbreviation(fields[0])
		}
	}

	if m := zonePattern.FindStringSubmatch(desc); m != nil {
		ev.Zone = m[1]
	}

	switch {
	case shotEvents[ev.Event]:
		if parts := strings.Split(desc, ","); len(parts) > 1 {
			ev.Type = clean(parts[1])
		}
	case ev.Event == "PENL":
		if m := penaltyPattern.FindStringSubmatch(desc); m != nil {
			ev.Type = clean(m[1])
		}
	}

	refs := p.references(desc, p.side(ev.EvTeam))
	if ev.Event == "FAC" && len(refs) >= 2 {
		// The winner goes first.
		evSide := p.side(ev.EvTeam)
		if refs[0].side != evSide && refs[1].side == evSide {
			refs[0], refs[1] = refs[1], refs[0]
		}
	}
	for i := 0; i < len(refs) && i < len(ev.Players); i++ {
		ev.Players[i] = refs[i].ref
	}
}

// references resolves every "#NN" in a description. A team code right
// before the number switches teams; otherwise the last team seen applies.
func (p *eventParser) references(desc string, current identity.Side) []sideRef {
	var refs []sideRef
	for _, m := range playerRefPattern.FindAllStringSubmatch(desc, -1) {
		if m[1] != "" {
			if side := p.side(m[1]); side != "" {
				current = side
			}
		}
		if current == "" {
			continue
		}
		refs = append(refs, sideRef{ref: p.resolve(current, "", m[2]), side: current})
	}
	return refs
}

// side maps a team code to the side it plays for in this game.
func (p *eventParser) side(code string) identity.Side {
	code = names.TeamAbbreviation(code)
	switch {
	case code == "":
		return ""
	case code == p.teams.Home:
		return identity.Home
	case code == p.teams.Away:
		return identity.Away
	}
	return ""
}

func (p *eventParser) resolve(side identity.Side, name, number string) store.PlayerRef {
	if rec, ok := p.players.Lookup(side, name, number); ok {
		return store.PlayerRef{Name: rec.Name, ID: rec.StableID}
	}
	return store.PlayerRef{Name: names.Normalize(name), ID: identity.Unresolved}
}

type onIceSummary struct {
	goalie  string
	skaters int
}

// onIce reads the players listed in an on-ice cell. Each player is a font
// element titled "Position - NAME" whose text is the jersey number.
func (p *eventParser) onIce(td *goquery.Selection, side identity.Side, out *[6]store.PlayerRef) onIceSummary {
	var sum onIceSummary
	n := 0
	td.Find("font[title]").Each(func(_ int, f *goquery.Selection) {
		title, _ := f.Attr("title")
		pos, name, ok := strings.Cut(title, " - ")
		if !ok {
			return
		}
		ref := p.resolve(side, name, cellText(f))
		if strings.EqualFold(strings.TrimSpace(pos), "Goalie") {
			sum.goalie = ref.Name
		} else {
			sum.skaters++
		}
		if n < len(out) {
			out[n] = ref
			n++
		}
	})
	return sum
}

// firstText returns the first non-blank text node directly inside s.
func firstText(s *goquery.Selection) string {
	var out string
	s.Contents().EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if goquery.NodeName(n) != "#text" {
			return true
		}
		if t := clean(n.Text()); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

// lineText is the cell text with line breaks turned into spaces.
func lineText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "br" {
			b.WriteString(" ")
			return
		}
		b.WriteString(n.Text())
	})
	return clean(b.String())
}
