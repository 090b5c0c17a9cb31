package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

const deleteNoteDescription = `Deletes a note from the vault.

Usage:
- path is vault-relative
- Always requires confirmation
- Deleting a note that does not exist is not an error`

// DeleteNoteTool removes notes. It always demands confirmation, on top of
// whatever the session's own confirmation settings say.
type DeleteNoteTool struct{}

// DeleteNoteInput represents the input for the delete_note tool.
type DeleteNoteInput struct {
	Path string `json:"path"`
}

// NewDeleteNoteTool creates a new delete_note tool.
func NewDeleteNoteTool() *DeleteNoteTool { return &DeleteNoteTool{} }

func (t *DeleteNoteTool) Name() string                 { return "delete_note" }
func (t *DeleteNoteTool) Category() types.ToolCategory { return types.CategoryVaultMutate }
func (t *DeleteNoteTool) Action() types.ActionKind     { return types.ActionDelete }
func (t *DeleteNoteTool) Description() string          { return deleteNoteDescription }
func (t *DeleteNoteTool) RequiresConfirmation() bool   { return true }

func (t *DeleteNoteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Vault-relative path of the note to delete"
			}
		},
		"required": ["path"]
	}`)
}

func (t *DeleteNoteTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params DeleteNoteInput
	_ = json.Unmarshal(input, &params)
	preview := ""
	if content, err := toolCtx.Vault.Read(ctx, params.Path); err == nil {
		preview = "\n\n" + truncatePreview(content, 400)
	}
	return fmt.Sprintf("Delete note %s?%s", params.Path, preview)
}

func (t *DeleteNoteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params DeleteNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	if params.Path == "" {
		return Errorf("path is required"), nil
	}

	if err := toolCtx.Vault.Delete(ctx, params.Path); err != nil {
		return Errorf("failed to delete %s: %v", params.Path, err), nil
	}
	return Text(params.Path, fmt.Sprintf("Deleted %s", params.Path)), nil
}
