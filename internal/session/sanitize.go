package session

import (
	"strings"
	"unicode"
)

// maxTitleLen bounds sanitized titles so derived paths stay safe on common
// filesystems.
const maxTitleLen = 100

// forbidden are the characters replaced when a title becomes a storage key.
const forbidden = `\/:*?"<>|`

// SanitizeTitle makes a title safe for use as a storage key: forbidden
// characters become dashes, whitespace runs collapse to a single space,
// the result is trimmed and truncated. Sanitizing twice is a no-op.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(forbidden, r):
			b.WriteRune('-')
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > maxTitleLen {
		out = strings.TrimSpace(string(runes[:maxTitleLen]))
	}
	return out
}
