package event

// Type identifies the kind of an event.
type Type string

const (
	SessionCreated Type = "session.created"
	SessionUpdated Type = "session.updated"
	SessionDeleted Type = "session.deleted"
	SessionEvicted Type = "session.evicted"

	ToolExecuted         Type = "tool.executed"
	ToolDenied           Type = "tool.denied"
	ToolLoopAborted      Type = "tool.loop_aborted"
	ConfirmationRequired Type = "tool.confirmation_required"

	MigrationCompleted Type = "migration.completed"
)

// Event is one published occurrence.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// SessionData accompanies the session lifecycle events.
type SessionData struct {
	SessionID string `json:"sessionID"`
	Title     string `json:"title,omitempty"`
	Path      string `json:"path,omitempty"`
}

// ToolData accompanies the tool lifecycle events.
type ToolData struct {
	SessionID string `json:"sessionID"`
	Tool      string `json:"tool"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// ConfirmationData describes a pending destructive-action confirmation.
type ConfirmationData struct {
	SessionID string `json:"sessionID"`
	Tool      string `json:"tool"`
	Message   string `json:"message"`
}

// MigrationData summarizes a completed migration run.
type MigrationData struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}
