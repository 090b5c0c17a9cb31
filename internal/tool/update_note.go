package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

const updateNoteDescription = `Updates an existing note in the vault.

Two modes:
- content replaces the whole note body
- old_text/new_text performs an exact single replacement; old_text must
  occur exactly once in the note`

// UpdateNoteTool modifies existing notes.
type UpdateNoteTool struct{}

// UpdateNoteInput represents the input for the update_note tool.
type UpdateNoteInput struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	OldText string `json:"old_text,omitempty"`
	NewText string `json:"new_text,omitempty"`
}

// NewUpdateNoteTool creates a new update_note tool.
func NewUpdateNoteTool() *UpdateNoteTool { return &UpdateNoteTool{} }

func (t *UpdateNoteTool) Name() string                 { return "update_note" }
func (t *UpdateNoteTool) Category() types.ToolCategory { return types.CategoryVaultMutate }
func (t *UpdateNoteTool) Action() types.ActionKind     { return types.ActionModify }
func (t *UpdateNoteTool) Description() string          { return updateNoteDescription }
func (t *UpdateNoteTool) RequiresConfirmation() bool   { return false }

func (t *UpdateNoteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Vault-relative path of the note to update"
			},
			"content": {
				"type": "string",
				"description": "Replacement for the entire note content"
			},
			"old_text": {
				"type": "string",
				"description": "Exact text to replace; must occur exactly once"
			},
			"new_text": {
				"type": "string",
				"description": "Replacement for old_text"
			}
		},
		"required": ["path"]
	}`)
}

// ConfirmationMessage previews the change as a diff against the current
// note content.
func (t *UpdateNoteTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params UpdateNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "Update note"
	}
	before, err := toolCtx.Vault.Read(ctx, params.Path)
	if err != nil {
		return fmt.Sprintf("Update note %s", params.Path)
	}
	after, err := applyUpdate(before, params)
	if err != nil {
		return fmt.Sprintf("Update note %s", params.Path)
	}
	diff, add, del := buildDiff(params.Path, before, after)
	return fmt.Sprintf("Update %s (+%d/-%d):\n\n%s", params.Path, add, del, truncatePreview(diff, 1200))
}

func (t *UpdateNoteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params UpdateNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}

	before, err := toolCtx.Vault.Read(ctx, params.Path)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return Errorf("note not found: %s (use write_note)", params.Path), nil
		}
		return Errorf("failed to read %s: %v", params.Path, err), nil
	}

	after, err := applyUpdate(before, params)
	if err != nil {
		return Errorf("%v", err), nil
	}
	if after == before {
		return Text(params.Path, "No changes"), nil
	}

	if err := toolCtx.Vault.Modify(ctx, params.Path, after); err != nil {
		return Errorf("failed to write %s: %v", params.Path, err), nil
	}
	_, add, del := buildDiff(params.Path, before, after)
	result := Text(params.Path, fmt.Sprintf("Updated %s (+%d/-%d)", params.Path, add, del))
	result.Metadata = map[string]any{"additions": add, "deletions": del}
	return result, nil
}

// applyUpdate computes the new note content for the requested mode.
func applyUpdate(before string, params UpdateNoteInput) (string, error) {
	if params.Content != "" {
		return params.Content, nil
	}
	if params.OldText == "" {
		return "", fmt.Errorf("either content or old_text/new_text is required")
	}
	switch strings.Count(before, params.OldText) {
	case 0:
		return "", fmt.Errorf("old_text not found in note")
	case 1:
		return strings.Replace(before, params.OldText, params.NewText, 1), nil
	default:
		return "", fmt.Errorf("old_text occurs more than once; provide a larger unique snippet")
	}
}
