// Package types provides the core data types for the Inkwell agent core.
package types

import "time"

// SessionType distinguishes the two kinds of chat sessions.
type SessionType string

const (
	// NoteChat is a session bound to exactly one source note.
	NoteChat SessionType = "note-chat"
	// AgentSession is a free-standing session with multi-note context.
	AgentSession SessionType = "agent-session"
)

// ChatSession is the unit of conversational state.
type ChatSession struct {
	ID             string         `json:"id" yaml:"id"`
	Type           SessionType    `json:"type" yaml:"type"`
	Title          string         `json:"title" yaml:"title"`
	Context        AgentContext   `json:"context" yaml:"context"`
	ModelConfig    *ModelConfig   `json:"modelConfig,omitempty" yaml:"model_config,omitempty"`
	Created        time.Time      `json:"created" yaml:"created"`
	LastActive     time.Time      `json:"lastActive" yaml:"last_active"`
	HistoryPath    string         `json:"historyPath" yaml:"history_path"`
	SourceNotePath string         `json:"sourceNotePath,omitempty" yaml:"source_note,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AgentContext is the capability and scope envelope of a session.
type AgentContext struct {
	// ContextFiles is an ordered set of note paths, unique by path.
	ContextFiles []string `json:"contextFiles" yaml:"context_files"`
	// EnabledTools lists the tool categories the session may invoke.
	EnabledTools []ToolCategory `json:"enabledTools" yaml:"enabled_tools"`
	// RequireConfirmation lists destructive-action kinds that need an
	// explicit caller confirmation before execution.
	RequireConfirmation []ActionKind `json:"requireConfirmation" yaml:"require_confirmation"`
	// MaxContextChars caps how much note content a model request may carry.
	MaxContextChars int `json:"maxContextChars,omitempty" yaml:"max_context_chars,omitempty"`
	// MaxCharsPerFile caps the contribution of a single note.
	MaxCharsPerFile int `json:"maxCharsPerFile,omitempty" yaml:"max_chars_per_file,omitempty"`
}

// Clone deep-copies the context so sessions never share slice state.
func (c AgentContext) Clone() AgentContext {
	out := c
	out.ContextFiles = append([]string(nil), c.ContextFiles...)
	out.EnabledTools = append([]ToolCategory(nil), c.EnabledTools...)
	out.RequireConfirmation = append([]ActionKind(nil), c.RequireConfirmation...)
	return out
}

// HasCategory reports whether the session may invoke tools of the category.
func (c AgentContext) HasCategory(cat ToolCategory) bool {
	for _, e := range c.EnabledTools {
		if e == cat {
			return true
		}
	}
	return false
}

// NeedsConfirmation reports whether the action kind requires confirmation.
func (c AgentContext) NeedsConfirmation(kind ActionKind) bool {
	for _, k := range c.RequireConfirmation {
		if k == kind {
			return true
		}
	}
	return false
}

// ModelConfig overrides the model defaults for a single session.
// A nil ModelConfig means "use defaults". Temperature and TopP are pointers
// so a zero value survives round-trips and is distinct from absent.
type ModelConfig struct {
	Model          string   `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP           *float64 `json:"topP,omitempty" yaml:"top_p,omitempty"`
	PromptTemplate string   `json:"promptTemplate,omitempty" yaml:"prompt_template,omitempty"`
}

// IsZero reports whether the config carries no overrides at all.
func (m *ModelConfig) IsZero() bool {
	return m == nil || (m.Model == "" && m.Temperature == nil && m.TopP == nil && m.PromptTemplate == "")
}

// ToolCategory is a coarse permission bucket a session either has or lacks.
type ToolCategory string

const (
	CategoryReadOnly    ToolCategory = "read-only"
	CategoryVaultMutate ToolCategory = "vault-mutate"
	CategoryExternal    ToolCategory = "external-call"
	CategorySystem      ToolCategory = "system"
)

// ActionKind is a finer-grained destructive-action tag that can require
// confirmation independent of the tool's category.
type ActionKind string

const (
	ActionCreate   ActionKind = "create"
	ActionModify   ActionKind = "modify"
	ActionDelete   ActionKind = "delete"
	ActionExternal ActionKind = "external-call"
)
