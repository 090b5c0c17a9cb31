package codec

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

func floatPtr(f float64) *float64 { return &f }

func testSession() *types.ChatSession {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &types.ChatSession{
		ID:         "01JTESTSESSION",
		Type:       types.AgentSession,
		Title:      "Research Notes",
		Created:    now,
		LastActive: now,
		Context: types.AgentContext{
			ContextFiles:        []string{"projects/Roadmap.md"},
			EnabledTools:        []types.ToolCategory{types.CategoryReadOnly, types.CategoryVaultMutate},
			RequireConfirmation: []types.ActionKind{types.ActionDelete},
			MaxContextChars:     60000,
		},
		ModelConfig: &types.ModelConfig{
			Model:       "claude-sonnet",
			Temperature: floatPtr(0),
			TopP:        floatPtr(0.9),
		},
		HistoryPath: "history/Research Notes.md",
		Metadata:    map[string]any{"auto_labeled": true},
	}
}

func TestRoundTrip(t *testing.T) {
	s := testSession()
	entries := []types.ConversationEntry{
		{
			Role:    types.RoleUser,
			Message: "Summarize the roadmap\nwith two lines",
			Metadata: types.EntryMetadata{
				Time:        time.Date(2026, 9, 1, 10, 1, 0, 0, time.UTC),
				NoteVersion: "abc123",
			},
		},
		{
			Role:    types.RoleModel,
			Message: "Here is the summary.",
			Model:   "claude-sonnet",
			Metadata: types.EntryMetadata{
				Time:        time.Date(2026, 9, 1, 10, 1, 5, 0, time.UTC),
				Temperature: floatPtr(0),
				TopP:        floatPtr(0.9),
				Prompt:      "summarize-prompt",
			},
		},
	}

	doc, err := EncodeDocument(s, entries)
	require.NoError(t, err)

	got, gotEntries, err := Decode(context.Background(), doc, s.HistoryPath, nil)
	require.NoError(t, err)

	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Type, got.Type)
	assert.Equal(t, s.Title, got.Title)
	assert.Equal(t, s.Context.EnabledTools, got.Context.EnabledTools)
	assert.Equal(t, s.Context.RequireConfirmation, got.Context.RequireConfirmation)
	assert.Equal(t, s.Context.MaxContextChars, got.Context.MaxContextChars)
	assert.Equal(t, []string{"Roadmap.md"}, got.Context.ContextFiles)

	require.NotNil(t, got.ModelConfig)
	assert.Equal(t, "claude-sonnet", got.ModelConfig.Model)
	require.NotNil(t, got.ModelConfig.Temperature, "zero temperature must survive the round trip")
	assert.Equal(t, 0.0, *got.ModelConfig.Temperature)
	require.NotNil(t, got.ModelConfig.TopP)
	assert.Equal(t, 0.9, *got.ModelConfig.TopP)

	require.Len(t, gotEntries, 2)
	assert.Equal(t, entries[0].Message, gotEntries[0].Message)
	assert.Equal(t, "abc123", gotEntries[0].Metadata.NoteVersion)
	assert.Equal(t, entries[1].Message, gotEntries[1].Message)
	assert.Equal(t, "claude-sonnet", gotEntries[1].Model)
	require.NotNil(t, gotEntries[1].Metadata.Temperature, "zero temperature row must not be dropped")
	assert.Equal(t, 0.0, *gotEntries[1].Metadata.Temperature)
	assert.Equal(t, "summarize-prompt", gotEntries[1].Metadata.Prompt)
}

func TestAppendEntryIdempotentDelimiters(t *testing.T) {
	s := testSession()

	a := types.ConversationEntry{Role: types.RoleUser, Message: "turn A"}
	b := types.ConversationEntry{Role: types.RoleModel, Message: "turn B"}

	doc, err := EncodeDocument(s, []types.ConversationEntry{a})
	require.NoError(t, err)

	doc = AppendEntry(doc, b)

	_, entries, err := Decode(context.Background(), doc, "x.md", nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "turn A", entries[0].Message)
	assert.Equal(t, "turn B", entries[1].Message)

	// The body must never stack delimiters back to back.
	_, body := splitHead(doc)
	assert.NotContains(t, body, "---\n---")
	assert.NotContains(t, body, "---\n\n---")
}

func TestAppendEntryToFreshDocument(t *testing.T) {
	s := testSession()
	doc, err := EncodeSession(s)
	require.NoError(t, err)

	doc = AppendEntry(doc, types.ConversationEntry{Role: types.RoleUser, Message: "first"})

	got, entries, err := Decode(context.Background(), doc, "x.md", nil)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID, "frontmatter must survive the first append")
	require.Len(t, entries, 1)
	assert.Equal(t, "first", entries[0].Message)
}

func TestEncodeEntryExpandsUserMessage(t *testing.T) {
	e := types.ConversationEntry{
		Role:        types.RoleModel,
		Message:     "the reply",
		UserMessage: "the original prompt",
	}

	entries := DecodeEntries(EncodeEntry(e))
	require.Len(t, entries, 2)
	assert.Equal(t, types.RoleUser, entries[0].Role)
	assert.Equal(t, "the original prompt", entries[0].Message)
	assert.Equal(t, types.RoleModel, entries[1].Role)
	assert.Equal(t, "the reply", entries[1].Message)
}

func TestDecodeDiscardsEmptySections(t *testing.T) {
	body := "## User\n\n>\n\n---\n\n## Model\n\n> kept\n\n---\n"
	entries := DecodeEntries(body)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestDecodeToleratesUnknownLines(t *testing.T) {
	body := "stray prose\n\n## User\n- time: not-a-time\n- unknown_field: zzz\n\n> hello\nnot quoted\n\n---\n"
	entries := DecodeEntries(body)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
	assert.True(t, entries[0].Metadata.Time.IsZero())
	assert.Nil(t, entries[0].Metadata.Temperature)
}

func TestDecodeMissingFrontmatterFails(t *testing.T) {
	_, _, err := Decode(context.Background(), "## User\n\n> hi\n", "x.md", nil)
	require.Error(t, err)
}

func TestQuoteMultilineWithBlankLines(t *testing.T) {
	e := types.ConversationEntry{Role: types.RoleUser, Message: "para one\n\npara two"}
	section := EncodeEntry(e)
	assert.True(t, strings.Contains(section, "> para one\n>\n> para two"))

	entries := DecodeEntries(section)
	require.Len(t, entries, 1)
	assert.Equal(t, "para one\n\npara two", entries[0].Message)
}
