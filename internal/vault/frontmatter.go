package vault

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelimiter = "---"

// SplitFrontmatter separates a note into its metadata block and body.
// The block must start on the first line; notes without one yield an empty
// block and the full content as body.
func SplitFrontmatter(content string) (block, body string) {
	if !strings.HasPrefix(content, fmDelimiter+"\n") && content != fmDelimiter {
		return "", content
	}

	rest := content[len(fmDelimiter)+1:]
	idx := strings.Index(rest, "\n"+fmDelimiter)
	if idx < 0 {
		return "", content
	}

	block = rest[:idx]
	body = rest[idx+len("\n"+fmDelimiter):]
	// The closing delimiter line ends at the next newline.
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return block, body
}

// JoinFrontmatter reassembles a note from a metadata block and body.
func JoinFrontmatter(block, body string) string {
	if block == "" {
		return body
	}
	return fmDelimiter + "\n" + strings.TrimRight(block, "\n") + "\n" + fmDelimiter + "\n" + body
}

func (v *FS) ReadFrontmatter(ctx context.Context, path string) (map[string]any, error) {
	content, err := v.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	block, _ := SplitFrontmatter(content)
	if block == "" {
		return nil, nil
	}

	fm := make(map[string]any)
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, fmt.Errorf("malformed frontmatter in %s: %w", path, err)
	}
	return fm, nil
}

func (v *FS) UpdateFrontmatter(ctx context.Context, path string, fn func(fm map[string]any)) error {
	content, err := v.Read(ctx, path)
	if err != nil {
		return err
	}

	block, body := SplitFrontmatter(content)
	fm := make(map[string]any)
	if block != "" {
		if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
			return fmt.Errorf("malformed frontmatter in %s: %w", path, err)
		}
	}

	fn(fm)

	out, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	return v.Modify(ctx, path, JoinFrontmatter(string(out), body))
}
