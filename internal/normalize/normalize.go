// Package normalize turns the free-text dates and amounts found in bank
// statements and receipts into canonical values. Both parsers are pure
// functions: unparseable input yields the zero value and ok=false, never an
// error, because malformed cells are expected noise in real documents.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// dateLayouts are tried in order. Priority matters: day-first numeric forms
// win over ISO, which wins over month-first, so "12/05/2024" is the 12th of
// May rather than December 5th.
var dateLayouts = []string{
	// day-first numeric
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	// ISO numeric
	"2006/1/2",
	"2006-1-2",
	// month-first numeric
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	// day month-name
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-January-2006",
	// month-name day
	"Jan 2 2006",
	"January 2 2006",
}

// nullTokens are cell values that mean "no data" rather than a parse failure
// worth reporting.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"-":    true,
}

// ParseDate parses a free-text calendar date. Separator noise (anything that
// is not a letter, digit, space, slash or hyphen) is stripped first; the
// fixed layout list is then tried in priority order. ok is false when no
// layout matches.
func ParseDate(text string) (time.Time, bool) {
	cleaned := cleanDateText(text)
	if nullTokens[strings.ToLower(cleaned)] {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanDateText drops separator noise and canonicalizes casing so that month
// names survive time.Parse, which wants "Jan", not "JAN" or "jan".
func cleanDateText(text string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r) || r == '/' || r == '-' || r == ' ':
			b.WriteRune(r)
			prevLetter = false
		case unicode.IsLetter(r):
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		default:
			// Noise such as commas or dots between date parts.
			prevLetter = false
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseAmount parses a monetary magnitude out of arbitrary cell text.
// Currency symbols, thousands separators and whitespace are stripped; the
// sign of the source text is discarded because direction comes from column
// semantics or keyword classification, never from the number itself.
// Sentinel cells ("", "nan", "none", "-") and non-numeric residue yield
// ok=false.
func ParseAmount(text string) (float64, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if nullTokens[trimmed] {
		return 0, false
	}

	var b strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = -v
	}
	return v, true
}
