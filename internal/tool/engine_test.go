package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// stubTool records executions so gate tests can prove Execute never ran.
type stubTool struct {
	name     string
	category types.ToolCategory
	action   types.ActionKind
	confirm  bool
	calls    int
	result   *Result
}

func (s *stubTool) Name() string                 { return s.name }
func (s *stubTool) Category() types.ToolCategory { return s.category }
func (s *stubTool) Action() types.ActionKind     { return s.action }
func (s *stubTool) Description() string          { return "stub" }
func (s *stubTool) Parameters() json.RawMessage  { return json.RawMessage(`{"type":"object"}`) }
func (s *stubTool) RequiresConfirmation() bool   { return s.confirm }

func (s *stubTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	return "stub preview"
}

func (s *stubTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	s.calls++
	if s.result != nil {
		return s.result, nil
	}
	return Text("stub", "done"), nil
}

func testEngine(t *testing.T, tools ...Tool) (*Engine, *types.ChatSession) {
	t.Helper()
	r := NewRegistry()
	for _, tl := range tools {
		r.Register(tl)
	}
	v := vault.NewFS(t.TempDir())
	cfg := &types.Config{}
	sess := &types.ChatSession{
		ID:   "test-session",
		Type: types.AgentSession,
		Context: types.AgentContext{
			EnabledTools: []types.ToolCategory{types.CategoryReadOnly, types.CategoryVaultMutate},
		},
	}
	return NewEngine(v, cfg, r), sess
}

func TestCapabilityGateDeniesWithoutExecuting(t *testing.T) {
	stub := &stubTool{name: "ext", category: types.CategoryExternal}
	e, sess := testEngine(t, stub)

	outcome := e.Invoke(context.Background(), sess, Call{Tool: "ext"})

	assert.Equal(t, StatusDenied, outcome.Status)
	assert.False(t, outcome.Result.OK)
	assert.NotEmpty(t, outcome.Result.Error)
	assert.Zero(t, stub.calls, "Execute must not run for a denied call")
}

func TestUnknownToolFails(t *testing.T) {
	e, sess := testEngine(t)

	outcome := e.Invoke(context.Background(), sess, Call{Tool: "nope"})

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.False(t, outcome.Result.OK)
}

func TestConfirmationSuspendsUntilConfirmed(t *testing.T) {
	stub := &stubTool{name: "danger", category: types.CategoryVaultMutate, confirm: true}
	e, sess := testEngine(t, stub)
	ctx := context.Background()

	outcome := e.Invoke(ctx, sess, Call{Tool: "danger"})
	assert.Equal(t, StatusAwaitingConfirmation, outcome.Status)
	assert.Equal(t, "stub preview", outcome.Confirmation)
	assert.Zero(t, stub.calls)

	outcome = e.Invoke(ctx, sess, Call{Tool: "danger", Confirmed: true})
	assert.Equal(t, StatusSucceeded, outcome.Status)
	assert.Equal(t, 1, stub.calls)
}

func TestSessionActionKindRequiresConfirmation(t *testing.T) {
	stub := &stubTool{name: "mutate", category: types.CategoryVaultMutate, action: types.ActionModify}
	e, sess := testEngine(t, stub)
	sess.Context.RequireConfirmation = []types.ActionKind{types.ActionModify}

	outcome := e.Invoke(context.Background(), sess, Call{Tool: "mutate"})

	assert.Equal(t, StatusAwaitingConfirmation, outcome.Status)
	assert.Zero(t, stub.calls)
}

func TestLoopDetectionAbortsThresholdCall(t *testing.T) {
	stub := &stubTool{name: "mutate", category: types.CategoryVaultMutate}
	e, sess := testEngine(t, stub)
	ctx := context.Background()
	input := json.RawMessage(`{"path":"a.md"}`)

	for i := 0; i < types.DefaultLoopThreshold-1; i++ {
		outcome := e.Invoke(ctx, sess, Call{Tool: "mutate", Input: input})
		require.Equal(t, StatusSucceeded, outcome.Status)
	}

	outcome := e.Invoke(ctx, sess, Call{Tool: "mutate", Input: input})
	assert.Equal(t, StatusLoopAborted, outcome.Status)
	assert.Equal(t, types.DefaultLoopThreshold-1, stub.calls)
}

func TestLoopDetectionCountsFailedCalls(t *testing.T) {
	stub := &stubTool{name: "mutate", category: types.CategoryVaultMutate, result: Errorf("boom")}
	e, sess := testEngine(t, stub)
	ctx := context.Background()
	input := json.RawMessage(`{"x":1}`)

	for i := 0; i < types.DefaultLoopThreshold-1; i++ {
		outcome := e.Invoke(ctx, sess, Call{Tool: "mutate", Input: input})
		require.Equal(t, StatusFailed, outcome.Status)
	}

	outcome := e.Invoke(ctx, sess, Call{Tool: "mutate", Input: input})
	assert.Equal(t, StatusLoopAborted, outcome.Status)
}

func TestReadOnlyToolsExemptFromLoopDetection(t *testing.T) {
	stub := &stubTool{name: "query", category: types.CategoryReadOnly}
	e, sess := testEngine(t, stub)
	ctx := context.Background()

	for i := 0; i < types.DefaultLoopThreshold*2; i++ {
		outcome := e.Invoke(ctx, sess, Call{Tool: "query"})
		require.Equal(t, StatusSucceeded, outcome.Status)
	}
	assert.Equal(t, types.DefaultLoopThreshold*2, stub.calls)
}

func TestDifferentInputBreaksLoopStreak(t *testing.T) {
	stub := &stubTool{name: "mutate", category: types.CategoryVaultMutate}
	e, sess := testEngine(t, stub)
	ctx := context.Background()

	outcomes := []*Outcome{
		e.Invoke(ctx, sess, Call{Tool: "mutate", Input: json.RawMessage(`{"n":1}`)}),
		e.Invoke(ctx, sess, Call{Tool: "mutate", Input: json.RawMessage(`{"n":1}`)}),
		e.Invoke(ctx, sess, Call{Tool: "mutate", Input: json.RawMessage(`{"n":2}`)}),
		e.Invoke(ctx, sess, Call{Tool: "mutate", Input: json.RawMessage(`{"n":1}`)}),
	}
	for i, o := range outcomes {
		assert.Equal(t, StatusSucceeded, o.Status, "call %d", i)
	}
}

func TestRunBatchStopsOnFirstFailureByDefault(t *testing.T) {
	ok := &stubTool{name: "ok", category: types.CategoryVaultMutate}
	bad := &stubTool{name: "bad", category: types.CategoryVaultMutate, result: Errorf("boom")}
	e, sess := testEngine(t, ok, bad)

	outcomes := e.RunBatch(context.Background(), sess, []Call{
		{Tool: "ok", Input: json.RawMessage(`{"n":1}`)},
		{Tool: "bad"},
		{Tool: "ok", Input: json.RawMessage(`{"n":2}`)},
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, StatusFailed, outcomes[1].Status)
	assert.Equal(t, 1, ok.calls, "batch must stop before the third call")
}

func TestRunBatchContinuesWhenConfigured(t *testing.T) {
	ok := &stubTool{name: "ok", category: types.CategoryVaultMutate}
	bad := &stubTool{name: "bad", category: types.CategoryVaultMutate, result: Errorf("boom")}
	e, sess := testEngine(t, ok, bad)
	cont := false
	e.cfg.StopOnToolError = &cont

	outcomes := e.RunBatch(context.Background(), sess, []Call{
		{Tool: "ok", Input: json.RawMessage(`{"n":1}`)},
		{Tool: "bad"},
		{Tool: "ok", Input: json.RawMessage(`{"n":2}`)},
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, 2, ok.calls)
}

// recordingStore captures entries the engine folds into the transcript.
type recordingStore struct {
	entries []types.ConversationEntry
}

func (r *recordingStore) AppendEntry(ctx context.Context, sessionID string, entry types.ConversationEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func TestEngineRecordsOutcomes(t *testing.T) {
	stub := &stubTool{name: "mutate", category: types.CategoryVaultMutate}
	e, sess := testEngine(t, stub)
	rec := &recordingStore{}
	e.SetRecorder(rec)

	e.Invoke(context.Background(), sess, Call{Tool: "mutate"})

	require.Len(t, rec.entries, 1)
	assert.Equal(t, types.RoleSystem, rec.entries[0].Role)
	assert.Equal(t, "mutate", rec.entries[0].Metadata.Tool)
	assert.Equal(t, string(StatusSucceeded), rec.entries[0].Metadata.ToolStatus)
}
