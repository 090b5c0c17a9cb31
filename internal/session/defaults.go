package session

import (
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// defaultContext builds the per-kind default capability envelope. Slices
// are freshly allocated on every call so sessions never share state.
func defaultContext(kind types.SessionType, cfg *types.Config) types.AgentContext {
	ctx := types.AgentContext{
		MaxContextChars: cfg.MaxContextChars,
		MaxCharsPerFile: cfg.MaxCharsPerFile,
	}
	if ctx.MaxContextChars <= 0 {
		ctx.MaxContextChars = types.DefaultMaxContextChars
	}
	if ctx.MaxCharsPerFile <= 0 {
		ctx.MaxCharsPerFile = types.DefaultMaxCharsPerFile
	}

	switch kind {
	case types.AgentSession:
		ctx.EnabledTools = []types.ToolCategory{types.CategoryReadOnly, types.CategoryVaultMutate}
		ctx.RequireConfirmation = []types.ActionKind{types.ActionDelete, types.ActionModify}
	default:
		ctx.EnabledTools = []types.ToolCategory{types.CategoryReadOnly}
		ctx.RequireConfirmation = []types.ActionKind{types.ActionDelete, types.ActionModify}
	}
	return ctx
}
