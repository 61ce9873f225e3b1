// Package phone validates candidate telephone numbers against the German
// numbering plan. The check is deliberately shallow: it accepts the three
// lead-in forms a German customer would plausibly type and rejects obvious
// garbage, without attempting carrier- or area-level validation.
package phone

import (
	"regexp"
	"strings"
	"unicode"
)

// germanNumber matches a whitespace-stripped candidate in one of three forms:
//
//	+49 <national number>     international prefix
//	0049 <national number>    zero-zero international prefix
//	0 <national number>       domestic trunk prefix
//
// The national number must start with a non-zero digit and carry 4 to 13
// significant digits in total, which covers every assigned German range while
// rejecting both stubs ("00") and pathologically long input.
var germanNumber = regexp.MustCompile(`^(?:\+49|0049|0)[1-9][0-9]{3,12}$`)

// Validate reports whether raw is an acceptable German phone number.
//
// Whitespace separators are stripped before matching, so "0160 1234567" and
// "01601234567" are equivalent. Any other non-digit character (except the
// single leading "+") makes the number invalid. Validate never fails in any
// other way; it is a pure function of its input.
func Validate(raw string) bool {
	s := stripSpace(raw)
	if s == "" {
		return false
	}
	return germanNumber.MatchString(s)
}

// stripSpace removes all Unicode whitespace from s. The common case (no
// whitespace at all) returns s unchanged without allocating.
func stripSpace(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
