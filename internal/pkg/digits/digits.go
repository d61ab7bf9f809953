// Package digits normalises phone numbers and postal codes typed with punctuation.
package digits

import "strings"

// Only strips every non-digit rune from s.
func Only(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
