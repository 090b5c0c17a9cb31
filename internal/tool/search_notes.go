package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

const searchNotesDescription = `Searches note contents in the vault.

Usage:
- query is matched case-insensitively against every line of every note
- folder restricts the search to one subtree
- Results are "path:line: text" rows, capped at 100 matches`

const maxSearchResults = 100

// SearchNotesTool performs a full-text scan of the vault.
type SearchNotesTool struct{}

// SearchNotesInput represents the input for the search_notes tool.
type SearchNotesInput struct {
	Query  string `json:"query"`
	Folder string `json:"folder,omitempty"`
}

// NewSearchNotesTool creates a new search_notes tool.
func NewSearchNotesTool() *SearchNotesTool { return &SearchNotesTool{} }

func (t *SearchNotesTool) Name() string                 { return "search_notes" }
func (t *SearchNotesTool) Category() types.ToolCategory { return types.CategoryReadOnly }
func (t *SearchNotesTool) Action() types.ActionKind     { return "" }
func (t *SearchNotesTool) Description() string          { return searchNotesDescription }
func (t *SearchNotesTool) RequiresConfirmation() bool   { return false }

func (t *SearchNotesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Text to search for, case-insensitive"
			},
			"folder": {
				"type": "string",
				"description": "Vault-relative folder to search under"
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchNotesTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params SearchNotesInput
	_ = json.Unmarshal(input, &params)
	return fmt.Sprintf("Search notes for %q", params.Query)
}

func (t *SearchNotesTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params SearchNotesInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	if strings.TrimSpace(params.Query) == "" {
		return Errorf("query is required"), nil
	}

	pattern := "**/*.md"
	if params.Folder != "" {
		pattern = strings.TrimSuffix(params.Folder, "/") + "/**/*.md"
	}
	paths, err := toolCtx.Vault.Glob(ctx, pattern)
	if err != nil {
		return Errorf("search failed: %v", err), nil
	}

	needle := strings.ToLower(params.Query)
	var matches []string
	for _, path := range paths {
		content, err := toolCtx.Vault.Read(ctx, path)
		if err != nil {
			// Unreadable notes are skipped, same as malformed ones
			// in a listing.
			continue
		}
		for i, line := range strings.Split(content, "\n") {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			matches = append(matches, fmt.Sprintf("%s:%d: %s", path, i+1, strings.TrimSpace(line)))
			if len(matches) >= maxSearchResults {
				break
			}
		}
		if len(matches) >= maxSearchResults {
			break
		}
	}

	title := fmt.Sprintf("%d matches for %q", len(matches), params.Query)
	return Text(title, strings.Join(matches, "\n")), nil
}
