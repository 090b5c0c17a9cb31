// Package tool provides the tool framework of the agent core: the Tool
// interface, the registry of built-in vault tools, and the execution engine
// that enforces the capability, confirmation and loop-detection gates
// around every call.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the tool identifier.
	Name() string

	// Category returns the permission bucket gating the tool.
	Category() types.ToolCategory

	// Action returns the destructive-action kind of the tool, empty for
	// tools that mutate nothing.
	Action() types.ActionKind

	// Description returns the tool description shown to the model.
	Description() string

	// Parameters returns the JSON Schema for tool parameters.
	Parameters() json.RawMessage

	// RequiresConfirmation reports whether the tool always needs an
	// explicit confirmation, regardless of session settings.
	RequiresConfirmation() bool

	// ConfirmationMessage renders a human-readable preview of what the
	// call would do.
	ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string

	// Execute runs the tool with the given input.
	Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error)
}

// Context provides execution context to tools.
type Context struct {
	Vault   vault.Vault
	Session *types.ChatSession
	Config  *types.Config
}

// Result represents the output of a tool execution. A blocked or failed
// call is a normal result with OK false, never a panic or a raised error,
// so a calling model loop can observe and adapt to it.
type Result struct {
	OK       bool           `json:"ok"`
	Title    string         `json:"title,omitempty"`
	Output   string         `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Text builds a successful result.
func Text(title, output string) *Result {
	return &Result{OK: true, Title: title, Output: output}
}

// Errorf builds a failed result.
func Errorf(format string, args ...any) *Result {
	return &Result{Error: fmt.Sprintf(format, args...)}
}

// truncatePreview keeps confirmation messages readable for large content.
func truncatePreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n… (truncated)"
}
