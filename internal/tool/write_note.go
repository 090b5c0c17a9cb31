package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

const writeNoteDescription = `Creates a new note in the vault.

Usage:
- path is vault-relative and must not already exist
- Parent folders are created as needed
- Use update_note to change an existing note`

// WriteNoteTool creates notes.
type WriteNoteTool struct{}

// WriteNoteInput represents the input for the write_note tool.
type WriteNoteInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewWriteNoteTool creates a new write_note tool.
func NewWriteNoteTool() *WriteNoteTool { return &WriteNoteTool{} }

func (t *WriteNoteTool) Name() string                 { return "write_note" }
func (t *WriteNoteTool) Category() types.ToolCategory { return types.CategoryVaultMutate }
func (t *WriteNoteTool) Action() types.ActionKind     { return types.ActionCreate }
func (t *WriteNoteTool) Description() string          { return writeNoteDescription }
func (t *WriteNoteTool) RequiresConfirmation() bool   { return false }

func (t *WriteNoteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Vault-relative path of the note to create"
			},
			"content": {
				"type": "string",
				"description": "Full markdown content of the new note"
			}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteNoteTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params WriteNoteInput
	_ = json.Unmarshal(input, &params)
	return fmt.Sprintf("Create note %s:\n\n%s", params.Path, truncatePreview(params.Content, 600))
}

func (t *WriteNoteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params WriteNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	if params.Path == "" {
		return Errorf("path is required"), nil
	}

	if err := toolCtx.Vault.Create(ctx, params.Path, params.Content); err != nil {
		if errors.Is(err, vault.ErrExists) {
			return Errorf("note already exists: %s (use update_note)", params.Path), nil
		}
		return Errorf("failed to create %s: %v", params.Path, err), nil
	}
	return Text(params.Path, fmt.Sprintf("Created %s (%d bytes)", params.Path, len(params.Content))), nil
}
