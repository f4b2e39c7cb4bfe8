// Package slug derives URL-friendly identifiers from display names.
package slug

import (
	"strings"
	"unicode"
)

// Generate lowercases the input, collapses every run of characters outside
// [a-z0-9] into a single hyphen and trims leading/trailing hyphens, so
// "Modern Art" becomes "modern-art".
func Generate(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// Valid reports whether s already satisfies the slug charset rule
// (lowercase letters, digits and hyphens only).
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
