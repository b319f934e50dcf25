// Package names canonicalizes player and team identifiers so that the three
// feeds agree on who is who.
package names

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// suffixes are generational markers dropped from the end of a name.
var suffixes = map[string]bool{
	"JR":  true,
	"SR":  true,
	"II":  true,
	"III": true,
	"IV":  true,
}

// aliases maps spellings used by one feed to the spelling used by another.
// Keys and values are already normalized; no value may appear as a key.
var aliases = map[string]string{
	"ALEXANDER OVECHKIN":  "ALEX OVECHKIN",
	"ALEXANDER STEEN":     "ALEX STEEN",
	"ALEXANDER WENNBERG":  "ALEX WENNBERG",
	"ALEXANDER KILLORN":   "ALEX KILLORN",
	"CHRISTOPHER TANEV":   "CHRIS TANEV",
	"CHRISTOPHER BRODEUR": "CHRIS BRODEUR",
	"MITCHELL MARNER":     "MITCH MARNER",
	"MICHAEL MATHESON":    "MIKE MATHESON",
	"MICHAEL CAMMALLERI":  "MIKE CAMMALLERI",
	"MATTHEW NIETO":       "MATT NIETO",
	"MATTHEW BENNING":     "MATT BENNING",
	"NICOLAS PETAN":       "NIC PETAN",
	"JOSHUA MORRISSEY":    "JOSH MORRISSEY",
	"ZACHARY SANFORD":     "ZACH SANFORD",
	"THOMAS MCCOLLUM":     "TOM MCCOLLUM",
	"DANIEL CARCILLO":     "DAN CARCILLO",
	"JACOB DE LA ROSE":    "JACOB DELAROSE",
	"TOBY ENSTROM":        "TOBIAS ENSTROM",
}

// Normalize folds a raw player name into its canonical matching key.
// It is total, deterministic and idempotent.
func Normalize(raw string) string {
	s := unidecode.Unidecode(norm.NFC.String(raw))
	s = cases.Upper(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'' || r == '.' || r == '`':
			// O'BRIEN -> OBRIEN, P.K. -> PK
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for len(tokens) > 1 && suffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	name := strings.Join(tokens, " ")
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}
