// Package sanitizer normalizes caller-supplied free text before
// validation and persistence.
package sanitizer

import (
	"strings"
	"unicode"
)

// SanitizeFreeText trims the string, collapses runs of whitespace and
// drops control characters. Used for names and special-requirement
// notes; it never rejects, only normalizes.
func SanitizeFreeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimSpace(b.String())
}
