package types

import "time"

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// ConversationEntry is one persisted turn of a session.
type ConversationEntry struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
	// Model is the model that produced the turn, when known.
	Model string `json:"model,omitempty"`
	// UserMessage carries the preceding prompt when the first persisted
	// model turn has no prior user turn on record.
	UserMessage string        `json:"userMessage,omitempty"`
	Metadata    EntryMetadata `json:"metadata,omitempty"`
}

// EntryMetadata is the per-turn metadata table. Numeric fields are pointers
// so that an explicit zero (temperature 0) is preserved across round-trips
// and stays distinguishable from an absent value.
type EntryMetadata struct {
	Time        time.Time `json:"time,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"topP,omitempty"`
	// Prompt references a custom prompt template, when one was used.
	Prompt string `json:"prompt,omitempty"`
	// NoteVersion fingerprints the source note at the time of the turn.
	NoteVersion string `json:"noteVersion,omitempty"`
	// Tool and ToolStatus record a tool invocation outcome folded into
	// the transcript.
	Tool       string `json:"tool,omitempty"`
	ToolStatus string `json:"toolStatus,omitempty"`
}
