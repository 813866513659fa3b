package common

import (
	"strings"

	"golang.org/x/text/width"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Fold maps full-width ASCII variants (digits, "％", "．") to their narrow
// forms and trims surrounding whitespace.
func Fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// CompactFold is Fold with all inner whitespace removed. Header labels
// broken over several lines with <br> compare equal to their one-line form.
func CompactFold(s string) string {
	return strings.Join(strings.Fields(width.Fold.String(s)), "")
}
