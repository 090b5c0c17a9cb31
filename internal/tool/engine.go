package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/inkwell-ai/inkwell/internal/event"
	"github.com/inkwell-ai/inkwell/internal/logging"
	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Status is the terminal state of one tool invocation.
type Status string

const (
	StatusSucceeded            Status = "succeeded"
	StatusFailed               Status = "failed"
	StatusDenied               Status = "denied"
	StatusAwaitingConfirmation Status = "awaiting-confirmation"
	StatusLoopAborted          Status = "loop-aborted"
)

// Call is one requested tool invocation.
type Call struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
	// Confirmed marks that the caller already presented and obtained the
	// confirmation for this call.
	Confirmed bool `json:"confirmed,omitempty"`
}

// Outcome is the uniform result of Invoke. Result is always non-nil.
type Outcome struct {
	Status Status  `json:"status"`
	Result *Result `json:"result"`
	// Confirmation carries the preview text when Status is
	// StatusAwaitingConfirmation.
	Confirmation string `json:"confirmation,omitempty"`
}

// Recorder persists a tool outcome into a session transcript. The session
// store satisfies this.
type Recorder interface {
	AppendEntry(ctx context.Context, sessionID string, entry types.ConversationEntry) error
}

// Engine dispatches tool calls through the permission gates.
type Engine struct {
	registry *Registry
	loops    *LoopDetector
	vault    vault.Vault
	cfg      *types.Config
	recorder Recorder
}

// NewEngine creates an execution engine over a registry.
func NewEngine(v vault.Vault, cfg *types.Config, registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		loops:    NewLoopDetector(cfg.EffectiveLoopThreshold(), cfg.LoopWindow()),
		vault:    v,
		cfg:      cfg,
	}
}

// SetRecorder enables transcript recording of tool outcomes.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *Registry { return e.registry }

// ClearLoopHistory drops loop-detection state for a session, typically
// when the session ends.
func (e *Engine) ClearLoopHistory(sessionID string) { e.loops.Clear(sessionID) }

// Invoke runs one call through the gate sequence: capability, confirmation,
// loop detection, then execution. Every gate failure is a normal outcome;
// the tool's Execute never runs for a blocked call.
func (e *Engine) Invoke(ctx context.Context, sess *types.ChatSession, call Call) *Outcome {
	t, ok := e.registry.Get(call.Tool)
	if !ok {
		return &Outcome{Status: StatusFailed, Result: Errorf("unknown tool: %s", call.Tool)}
	}
	toolCtx := &Context{Vault: e.vault, Session: sess, Config: e.cfg}

	if !sess.Context.HasCategory(t.Category()) {
		event.Publish(event.Event{Type: event.ToolDenied, Data: event.ToolData{
			SessionID: sess.ID,
			Tool:      t.Name(),
			Error:     "category not enabled",
		}})
		outcome := &Outcome{
			Status: StatusDenied,
			Result: Errorf("tool %s requires the %s capability, which this session does not have", t.Name(), t.Category()),
		}
		e.record(ctx, sess, t, outcome)
		return outcome
	}

	if e.needsConfirmation(sess, t) && !call.Confirmed {
		preview := t.ConfirmationMessage(ctx, call.Input, toolCtx)
		event.Publish(event.Event{Type: event.ConfirmationRequired, Data: event.ConfirmationData{
			SessionID: sess.ID,
			Tool:      t.Name(),
			Message:   preview,
		}})
		return &Outcome{
			Status:       StatusAwaitingConfirmation,
			Result:       Errorf("confirmation required for %s", t.Name()),
			Confirmation: preview,
		}
	}

	// Read-only tools are exempt: an idempotent query repeated by the
	// model is wasteful but not dangerous, and aborting it confuses the
	// calling loop more than it helps.
	if t.Category() != types.CategoryReadOnly && e.loops.Check(sess.ID, t.Name(), call.Input) {
		event.Publish(event.Event{Type: event.ToolLoopAborted, Data: event.ToolData{
			SessionID: sess.ID,
			Tool:      t.Name(),
			Error:     "repeated identical call",
		}})
		outcome := &Outcome{
			Status: StatusLoopAborted,
			Result: Errorf("aborted: %s was called repeatedly with identical parameters", t.Name()),
		}
		e.record(ctx, sess, t, outcome)
		return outcome
	}

	result, err := t.Execute(ctx, call.Input, toolCtx)
	if err != nil {
		result = Errorf("%v", err)
	}
	if result == nil {
		result = Errorf("tool %s returned no result", t.Name())
	}

	status := StatusSucceeded
	if !result.OK {
		status = StatusFailed
	}
	event.Publish(event.Event{Type: event.ToolExecuted, Data: event.ToolData{
		SessionID: sess.ID,
		Tool:      t.Name(),
		OK:        result.OK,
		Error:     result.Error,
	}})
	logging.Debug().
		Str("session", sess.ID).
		Str("tool", t.Name()).
		Bool("ok", result.OK).
		Msg("tool executed")

	outcome := &Outcome{Status: status, Result: result}
	e.record(ctx, sess, t, outcome)
	return outcome
}

// RunBatch executes calls sequentially. With the stop-on-error policy the
// batch halts at the first call that did not succeed; prior successful
// calls are never rolled back.
func (e *Engine) RunBatch(ctx context.Context, sess *types.ChatSession, calls []Call) []*Outcome {
	outcomes := make([]*Outcome, 0, len(calls))
	for _, call := range calls {
		outcome := e.Invoke(ctx, sess, call)
		outcomes = append(outcomes, outcome)
		if outcome.Status != StatusSucceeded && e.cfg.EffectiveStopOnToolError() {
			break
		}
	}
	return outcomes
}

func (e *Engine) needsConfirmation(sess *types.ChatSession, t Tool) bool {
	if t.RequiresConfirmation() {
		return true
	}
	if kind := t.Action(); kind != "" && sess.Context.NeedsConfirmation(kind) {
		return true
	}
	return false
}

// record folds a terminal outcome into the session transcript when a
// recorder is attached. Recording is best effort.
func (e *Engine) record(ctx context.Context, sess *types.ChatSession, t Tool, outcome *Outcome) {
	if e.recorder == nil {
		return
	}
	message := outcome.Result.Output
	if message == "" {
		message = outcome.Result.Error
	}
	entry := types.ConversationEntry{
		Role:    types.RoleSystem,
		Message: message,
		Metadata: types.EntryMetadata{
			Time:       time.Now(),
			Tool:       t.Name(),
			ToolStatus: string(outcome.Status),
		},
	}
	if err := e.recorder.AppendEntry(ctx, sess.ID, entry); err != nil {
		logging.Warn().Err(err).Str("session", sess.ID).Msg("failed to record tool outcome")
	}
}
