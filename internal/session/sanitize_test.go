package session

import (
	"strings"
	"testing"
)

func TestSanitizeTitleForbiddenChars(t *testing.T) {
	got := SanitizeTitle(`Agent: Test Mode`)
	if got != "Agent- Test Mode" {
		t.Errorf("SanitizeTitle = %q, want %q", got, "Agent- Test Mode")
	}

	all := SanitizeTitle(`a\b/c:d*e?f"g<h>i|j`)
	for _, r := range forbidden {
		if strings.ContainsRune(all, r) {
			t.Errorf("sanitized title still contains %q: %q", r, all)
		}
	}
}

func TestSanitizeTitleWhitespace(t *testing.T) {
	got := SanitizeTitle("  too   many\t spaces \n here  ")
	if got != "too many spaces here" {
		t.Errorf("SanitizeTitle = %q", got)
	}
}

func TestSanitizeTitleTruncates(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := SanitizeTitle(long)
	if len([]rune(got)) != maxTitleLen {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxTitleLen)
	}
}

func TestSanitizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		`Agent: Test Mode`,
		"  spaced   out  ",
		strings.Repeat("long title ", 20),
		`mixed\ / problems:  here`,
	}
	for _, in := range inputs {
		once := SanitizeTitle(in)
		twice := SanitizeTitle(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
