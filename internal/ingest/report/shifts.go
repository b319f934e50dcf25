package report

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/identity"
	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/names"
	"github.com/fortuna/rinkside/internal/store"
)

// ParseShifts reads one team's time-on-ice sheet. Each player block opens
// with a heading cell such as "87 CROSBY, SIDNEY" followed by one row per
// shift: number, period, start and end as "elapsed / remaining", and
// duration.
func ParseShifts(doc *goquery.Document, gameID, team string, side identity.Side, players *identity.Players) ([]store.Shift, error) {
	var (
		shifts   []store.Shift
		current  *store.PlayerRef
		parseErr error
	)

	doc.Find("td.playerHeading, tr.oddColor, tr.evenColor").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "td" {
			ref := headingPlayer(cellText(s), side, players)
			current = &ref
			return true
		}
		if current == nil {
			return true
		}

		tds := s.ChildrenFiltered("td")
		if tds.Length() != 6 || !strings.Contains(tds.Eq(2).Text(), "/") {
			// Summary rows share the row classes but not the layout.
			return true
		}

		shift, err := shiftRow(tds)
		if err != nil {
			parseErr = errors.Wrapf(err, "%s shift %s", current.Name, cellText(tds.Eq(0)))
			return false
		}
		shift.GameID = gameID
		shift.Team = team
		shift.Player = current.Name
		shift.PlayerID = current.ID
		shifts = append(shifts, shift)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	if len(shifts) == 0 {
		return nil, errors.New("no shift rows")
	}
	return shifts, nil
}

func shiftRow(tds *goquery.Selection) (store.Shift, error) {
	var s store.Shift

	period := cellText(tds.Eq(1))
	if strings.EqualFold(period, "OT") {
		s.Period = 4
	} else {
		p, err := strconv.Atoi(period)
		if err != nil {
			return s, errors.Wrapf(err, "period %q", period)
		}
		s.Period = p
	}

	var err error
	if s.Start, err = elapsed(cellText(tds.Eq(2))); err != nil {
		return s, err
	}
	if s.End, err = elapsed(cellText(tds.Eq(3))); err != nil {
		return s, err
	}
	if s.Duration, err = ingest.ClockSeconds(cellText(tds.Eq(4))); err != nil {
		return s, err
	}
	return s, nil
}

// elapsed reads the elapsed half of an "elapsed / remaining" clock.
func elapsed(clock string) (int, error) {
	before, _, _ := strings.Cut(clock, "/")
	return ingest.ClockSeconds(before)
}

// headingPlayer resolves a "NUMBER LAST, FIRST" heading.
func headingPlayer(heading string, side identity.Side, players *identity.Players) store.PlayerRef {
	number, rest, _ := strings.Cut(heading, " ")
	name := rest
	if last, first, ok := strings.Cut(rest, ","); ok {
		name = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}

	if rec, ok := players.Lookup(side, name, number); ok {
		return store.PlayerRef{Name: rec.Name, ID: rec.StableID}
	}
	return store.PlayerRef{Name: names.Normalize(name), ID: identity.Unresolved}
}
