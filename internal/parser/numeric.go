package parser

import (
	"strconv"
	"strings"
)

// parseNumber extracts a float from broker-formatted cell text. It
// strips everything that is not a digit, a decimal point, or a leading
// minus sign (currency symbols, thousands separators, non-breaking
// spaces). Empty or unparseable text degrades to 0 with ok=false; a
// single malformed cell must never abort a parse.
func parseNumber(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}

	var b strings.Builder
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	clean := b.String()
	if clean == "" || clean == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanText collapses whitespace runs (including non-breaking spaces)
// into single spaces and trims the result.
func cleanText(text string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(replaced), " ")
}
