package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxLinkDistance caps how far a fuzzy match may drift from the link text.
const maxLinkDistance = 2

// MakeLink renders the symbolic reference token for a note path. Tokens
// carry the note name rather than the raw path so renames within the vault
// do not orphan them.
func MakeLink(path string) string {
	return "[[" + Basename(path) + "]]"
}

// ParseLink extracts the target name from a [[wikilink]] token, dropping
// any |display alias and #heading fragment. Returns an empty string when
// the token is not a link.
func ParseLink(token string) string {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, "[[") || !strings.HasSuffix(token, "]]") {
		return ""
	}
	name := token[2 : len(token)-2]
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "#"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// ResolveLink resolves a [[wikilink]] token to a note path. Resolution
// order: explicit path, exact name match (same folder as fromPath wins),
// frontmatter alias, then nearest levenshtein match under a small cap.
func (v *FS) ResolveLink(ctx context.Context, token, fromPath string) (string, error) {
	name := ParseLink(token)
	if name == "" {
		name = strings.TrimSpace(token)
	}
	if name == "" {
		return "", fmt.Errorf("empty link token")
	}

	// An explicit path inside the token resolves directly.
	if strings.Contains(name, "/") {
		path := name
		if !strings.HasSuffix(path, ".md") {
			path += ".md"
		}
		if v.Exists(ctx, path) {
			return path, nil
		}
		return "", fmt.Errorf("link target %s: %w", name, ErrNotFound)
	}

	candidates, err := v.Glob(ctx, "**/*.md")
	if err != nil {
		return "", err
	}

	fromDir := ""
	if i := strings.LastIndex(fromPath, "/"); i >= 0 {
		fromDir = fromPath[:i]
	}

	var exact []string
	for _, c := range candidates {
		if strings.EqualFold(Basename(c), name) {
			exact = append(exact, c)
		}
	}
	if len(exact) > 0 {
		for _, c := range exact {
			if dirOf(c) == fromDir {
				return c, nil
			}
		}
		return exact[0], nil
	}

	// Alias pass over candidate frontmatter.
	for _, c := range candidates {
		fm, err := v.ReadFrontmatter(ctx, c)
		if err != nil || fm == nil {
			continue
		}
		if aliases, ok := fm["aliases"].([]any); ok {
			for _, a := range aliases {
				if s, ok := a.(string); ok && strings.EqualFold(s, name) {
					return c, nil
				}
			}
		}
	}

	// Fuzzy pass for near-miss names.
	best, bestDist := "", maxLinkDistance+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(Basename(c)))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if best != "" && bestDist <= maxLinkDistance {
		return best, nil
	}

	return "", fmt.Errorf("link target %s: %w", name, ErrNotFound)
}

func dirOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}
