package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

const moveNoteDescription = `Moves or renames a note within the vault.

Usage:
- Both paths are vault-relative
- Fails if the destination already exists
- Parent folders of the destination are created as needed`

// MoveNoteTool renames notes.
type MoveNoteTool struct{}

// MoveNoteInput represents the input for the move_note tool.
type MoveNoteInput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewMoveNoteTool creates a new move_note tool.
func NewMoveNoteTool() *MoveNoteTool { return &MoveNoteTool{} }

func (t *MoveNoteTool) Name() string                 { return "move_note" }
func (t *MoveNoteTool) Category() types.ToolCategory { return types.CategoryVaultMutate }
func (t *MoveNoteTool) Action() types.ActionKind     { return types.ActionModify }
func (t *MoveNoteTool) Description() string          { return moveNoteDescription }
func (t *MoveNoteTool) RequiresConfirmation() bool   { return false }

func (t *MoveNoteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"from": {
				"type": "string",
				"description": "Current vault-relative path of the note"
			},
			"to": {
				"type": "string",
				"description": "New vault-relative path"
			}
		},
		"required": ["from", "to"]
	}`)
}

func (t *MoveNoteTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params MoveNoteInput
	_ = json.Unmarshal(input, &params)
	return fmt.Sprintf("Move note %s to %s", params.From, params.To)
}

func (t *MoveNoteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params MoveNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	if params.From == "" || params.To == "" {
		return Errorf("from and to are required"), nil
	}

	if err := toolCtx.Vault.Rename(ctx, params.From, params.To); err != nil {
		switch {
		case errors.Is(err, vault.ErrNotFound):
			return Errorf("note not found: %s", params.From), nil
		case errors.Is(err, vault.ErrExists):
			return Errorf("destination already exists: %s", params.To), nil
		default:
			return Errorf("failed to move %s: %v", params.From, err), nil
		}
	}
	return Text(params.To, fmt.Sprintf("Moved %s to %s", params.From, params.To)), nil
}
