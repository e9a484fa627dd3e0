package widget

import (
	"strings"
	"unicode"
)

// sanitizeInput trims the message and drops control characters other than
// newlines and tabs.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
