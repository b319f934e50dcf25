package espn

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/ingest"
	"github.com/fortuna/rinkside/internal/store"
)

// Positions inside a "~" separated play record.
const (
	fieldX           = 0
	fieldY           = 1
	fieldClock       = 3
	fieldPeriod      = 4
	fieldDescription = 8
)

// eventKeywords maps description phrases to event codes. Order matters:
// the first phrase found wins.
var eventKeywords = []struct {
	phrase string
	event  string
}{
	{"GOAL SCORED", "GOAL"},
	{"SHOT ON GOAL", "SHOT"},
	{"SHOT MISSED", "MISS"},
	{"SHOT BLOCKED", "BLOCK"},
	{"PENALTY", "PENL"},
	{"FACEOFF", "FAC"},
	{"HIT", "HIT"},
	{"TAKEAWAY", "TAKE"},
	{"GIVEAWAY", "GIVE"},
}

// EventCode classifies a gamecast description. It returns "" for plays
// without a matching event.
func EventCode(description string) string {
	desc := strings.ToUpper(description)
	for _, kw := range eventKeywords {
		if strings.Contains(desc, kw.phrase) {
			return kw.event
		}
	}
	return ""
}

// ParseFeed reads the plays of a gamecast feed. Plays that cannot be
// classified or located are skipped.
func ParseFeed(body []byte) ([]store.CoordinateEvent, error) {
	var feed masterFeed
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	if err := dec.Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "decode gamecast feed")
	}

	events := make([]store.CoordinateEvent, 0, len(feed.Plays))
	for _, play := range feed.Plays {
		if ev, ok := parsePlay(play); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func parsePlay(play string) (store.CoordinateEvent, bool) {
	var ev store.CoordinateEvent

	fields := strings.Split(play, "~")
	if len(fields) <= fieldDescription {
		return ev, false
	}

	ev.Event = EventCode(fields[fieldDescription])
	if ev.Event == "" {
		return ev, false
	}

	var err error
	if ev.XC, err = strconv.ParseFloat(strings.TrimSpace(fields[fieldX]), 64); err != nil {
		return ev, false
	}
	if ev.YC, err = strconv.ParseFloat(strings.TrimSpace(fields[fieldY]), 64); err != nil {
		return ev, false
	}
	if ev.Period, err = strconv.Atoi(strings.TrimSpace(fields[fieldPeriod])); err != nil {
		return ev, false
	}
	if ev.SecondsElapsed, err = ingest.ClockSeconds(fields[fieldClock]); err != nil {
		return ev, false
	}
	return ev, true
}
