package report

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/store"
)

var captaincy = regexp.MustCompile(`\s*\((C|A)\)\s*$`)

// ParseRoster reads a roster sheet. The sheet lists the visiting team's
// dressed players first, then the home team's, then both scratch lists.
func ParseRoster(doc *goquery.Document) (*store.Roster, error) {
	var tables [][]store.RosterEntry

	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		if t.Find("table").Length() > 0 {
			return
		}
		rows := t.Find("tr")
		if rows.Length() == 0 || !isRosterHeader(rows.First()) {
			return
		}

		var entries []store.RosterEntry
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() != 3 {
				return
			}
			name := captaincy.ReplaceAllString(cellText(tds.Eq(2)), "")
			if name == "" {
				return
			}
			entries = append(entries, store.RosterEntry{
				Number:   cellText(tds.Eq(0)),
				Position: strings.ToUpper(cellText(tds.Eq(1))),
				Name:     strings.ToUpper(name),
			})
		})
		tables = append(tables, entries)
	})

	if len(tables) < 2 {
		return nil, errors.Newf("expected two dressed-player tables, found %d", len(tables))
	}

	roster := &store.Roster{Away: tables[0], Home: tables[1]}
	if len(roster.Away) == 0 || len(roster.Home) == 0 {
		return nil, errors.New("roster table is empty")
	}

	var coaches []string
	doc.Find("#HeadCoaches table").Each(func(_ int, t *goquery.Selection) {
		if t.Find("table").Length() > 0 {
			return
		}
		if name := cellText(t); name != "" {
			coaches = append(coaches, strings.ToUpper(name))
		}
	})
	if len(coaches) >= 2 {
		roster.AwayCoach, roster.HomeCoach = coaches[0], coaches[1]
	}

	return roster, nil
}

func isRosterHeader(tr *goquery.Selection) bool {
	tds := tr.Find("td")
	if tds.Length() != 3 {
		return false
	}
	return cellText(tds.Eq(0)) == "#" && cellText(tds.Eq(1)) == "Pos" && cellText(tds.Eq(2)) == "Name"
}
