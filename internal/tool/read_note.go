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

const readNoteDescription = `Reads a note from the vault.

Usage:
- The path parameter is vault-relative, e.g. "projects/plan.md"
- A [[wikilink]] token is also accepted and resolved by note name
- Output is truncated to the session's per-file budget`

// ReadNoteTool reads a single note.
type ReadNoteTool struct{}

// ReadNoteInput represents the input for the read_note tool.
type ReadNoteInput struct {
	Path string `json:"path"`
}

// NewReadNoteTool creates a new read_note tool.
func NewReadNoteTool() *ReadNoteTool { return &ReadNoteTool{} }

func (t *ReadNoteTool) Name() string                 { return "read_note" }
func (t *ReadNoteTool) Category() types.ToolCategory { return types.CategoryReadOnly }
func (t *ReadNoteTool) Action() types.ActionKind     { return "" }
func (t *ReadNoteTool) Description() string          { return readNoteDescription }
func (t *ReadNoteTool) RequiresConfirmation() bool   { return false }

func (t *ReadNoteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Vault-relative path or [[wikilink]] of the note to read"
			}
		},
		"required": ["path"]
	}`)
}

func (t *ReadNoteTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params ReadNoteInput
	_ = json.Unmarshal(input, &params)
	return fmt.Sprintf("Read note %s", params.Path)
}

func (t *ReadNoteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params ReadNoteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	path, err := resolveNotePath(ctx, toolCtx, params.Path)
	if err != nil {
		return Errorf("%v", err), nil
	}

	content, err := toolCtx.Vault.Read(ctx, path)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return Errorf("note not found: %s", path), nil
		}
		return Errorf("failed to read %s: %v", path, err), nil
	}

	if max := toolCtx.Session.Context.MaxCharsPerFile; max > 0 && len(content) > max {
		content = content[:max] + "\n… (truncated)"
	}
	return Text(path, content), nil
}

// resolveNotePath accepts either a vault-relative path or a [[wikilink]]
// token and returns the path.
func resolveNotePath(ctx context.Context, toolCtx *Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("path is required")
	}
	if !strings.HasPrefix(raw, "[[") {
		return raw, nil
	}
	from := ""
	if toolCtx.Session != nil {
		from = toolCtx.Session.SourceNotePath
	}
	path, err := toolCtx.Vault.ResolveLink(ctx, raw, from)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", raw, err)
	}
	return path, nil
}
