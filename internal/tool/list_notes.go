package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

const listNotesDescription = `Lists notes in the vault.

Usage:
- With no arguments, lists the vault root
- folder restricts the listing to one folder (non-recursive)
- pattern is a doublestar glob over the whole vault, e.g. "projects/**/*.md"
- Folders are suffixed with "/"`

const maxListResults = 500

// ListNotesTool lists vault folders and matches glob patterns.
type ListNotesTool struct{}

// ListNotesInput represents the input for the list_notes tool.
type ListNotesInput struct {
	Folder  string `json:"folder,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// NewListNotesTool creates a new list_notes tool.
func NewListNotesTool() *ListNotesTool { return &ListNotesTool{} }

func (t *ListNotesTool) Name() string                 { return "list_notes" }
func (t *ListNotesTool) Category() types.ToolCategory { return types.CategoryReadOnly }
func (t *ListNotesTool) Action() types.ActionKind     { return "" }
func (t *ListNotesTool) Description() string          { return listNotesDescription }
func (t *ListNotesTool) RequiresConfirmation() bool   { return false }

func (t *ListNotesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"folder": {
				"type": "string",
				"description": "Vault-relative folder to list"
			},
			"pattern": {
				"type": "string",
				"description": "Glob pattern matched against all note paths"
			}
		}
	}`)
}

func (t *ListNotesTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	return "List notes"
}

func (t *ListNotesTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params ListNotesInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}

	if params.Pattern != "" {
		matches, err := toolCtx.Vault.Glob(ctx, params.Pattern)
		if err != nil {
			return Errorf("bad pattern %q: %v", params.Pattern, err), nil
		}
		if len(matches) > maxListResults {
			matches = matches[:maxListResults]
		}
		title := fmt.Sprintf("%d matches for %s", len(matches), params.Pattern)
		return Text(title, strings.Join(matches, "\n")), nil
	}

	entries, err := toolCtx.Vault.List(ctx, params.Folder)
	if err != nil {
		return Errorf("failed to list %s: %v", params.Folder, err), nil
	}
	var lines []string
	for _, e := range entries {
		if e.Kind == vault.KindFolder {
			lines = append(lines, e.Name+"/")
			continue
		}
		lines = append(lines, e.Name)
	}
	title := params.Folder
	if title == "" {
		title = "vault root"
	}
	return Text(title, strings.Join(lines, "\n")), nil
}
