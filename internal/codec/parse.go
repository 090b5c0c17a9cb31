package codec

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// LinkResolver resolves symbolic reference tokens back to note paths.
// vault.FS satisfies it; a nil resolver falls back to the literal name.
type LinkResolver interface {
	ResolveLink(ctx context.Context, token, fromPath string) (string, error)
}

// Decode parses a session document into a session plus its conversation
// entries. path is the document's own location, used as link context.
func Decode(ctx context.Context, content, path string, resolver LinkResolver) (*types.ChatSession, []types.ConversationEntry, error) {
	block, body := vault.SplitFrontmatter(content)
	if block == "" {
		return nil, nil, fmt.Errorf("%s: missing session metadata block", path)
	}

	var fm sessionFrontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, nil, fmt.Errorf("%s: malformed metadata block: %w", path, err)
	}
	if fm.ID == "" {
		return nil, nil, fmt.Errorf("%s: metadata block has no session id", path)
	}

	s := &types.ChatSession{
		ID:          fm.ID,
		Type:        types.SessionType(fm.Type),
		Title:       fm.Title,
		Created:     fm.Created,
		LastActive:  fm.Updated,
		HistoryPath: path,
		Metadata:    fm.Metadata,
		Context: types.AgentContext{
			MaxContextChars: fm.MaxContextChars,
			MaxCharsPerFile: fm.MaxCharsPerFile,
		},
	}

	for _, token := range fm.ContextFiles {
		s.Context.ContextFiles = append(s.Context.ContextFiles, resolveToken(ctx, token, path, resolver))
	}
	for _, c := range fm.EnabledTools {
		s.Context.EnabledTools = append(s.Context.EnabledTools, types.ToolCategory(c))
	}
	for _, k := range fm.RequireConfirmation {
		s.Context.RequireConfirmation = append(s.Context.RequireConfirmation, types.ActionKind(k))
	}
	if fm.SourceNote != "" {
		s.SourceNotePath = resolveToken(ctx, fm.SourceNote, path, resolver)
	}
	if fm.Model != "" || fm.Temperature != nil || fm.TopP != nil || fm.PromptTemplate != "" {
		s.ModelConfig = &types.ModelConfig{
			Model:          fm.Model,
			Temperature:    fm.Temperature,
			TopP:           fm.TopP,
			PromptTemplate: fm.PromptTemplate,
		}
	}

	return s, DecodeEntries(body), nil
}

// resolveToken maps a [[link]] token to a path, falling back to the link
// name plus the markdown extension when resolution fails.
func resolveToken(ctx context.Context, token, fromPath string, resolver LinkResolver) string {
	if resolver != nil {
		if path, err := resolver.ResolveLink(ctx, token, fromPath); err == nil {
			return path
		}
	}
	name := vault.ParseLink(token)
	if name == "" {
		return token
	}
	if strings.HasSuffix(name, ".md") {
		return name
	}
	return name + ".md"
}

// headerRoles is the inverse of roleHeaders.
var headerRoles = map[string]types.Role{
	"## User":   types.RoleUser,
	"## Model":  types.RoleModel,
	"## System": types.RoleSystem,
}

// DecodeEntries parses the turn sections of a document body with a small
// line-oriented state machine: role header, metadata rows, quoted body.
// Parsing is tolerant: unknown lines are skipped, absent metadata fields
// stay unset, and sections with an empty message are discarded.
func DecodeEntries(body string) []types.ConversationEntry {
	var (
		entries []types.ConversationEntry
		current *types.ConversationEntry
		lines   []string
	)

	flush := func() {
		if current == nil {
			return
		}
		msg := strings.TrimRight(strings.Join(lines, "\n"), "\n")
		if strings.TrimSpace(msg) != "" {
			current.Message = msg
			entries = append(entries, *current)
		}
		current, lines = nil, nil
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimRight(line, " \t")

		if role, ok := headerRoles[trimmed]; ok {
			flush()
			current = &types.ConversationEntry{Role: role}
			continue
		}
		if trimmed == sectionDelim {
			flush()
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "> "):
			lines = append(lines, trimmed[2:])
		case trimmed == ">":
			lines = append(lines, "")
		case strings.HasPrefix(trimmed, "- ") && len(lines) == 0:
			parseMetaRow(current, trimmed[2:])
		}
	}
	flush()

	return entries
}

// parseMetaRow applies one "key: value" metadata table row to an entry.
// A zero numeric value is preserved, not treated as absent.
func parseMetaRow(e *types.ConversationEntry, row string) {
	key, value, ok := strings.Cut(row, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch key {
	case "time":
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			e.Metadata.Time = t
		}
	case "note_version":
		e.Metadata.NoteVersion = value
	case "model":
		e.Model = value
	case "temperature":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			e.Metadata.Temperature = &f
		}
	case "top_p":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			e.Metadata.TopP = &f
		}
	case "prompt":
		e.Metadata.Prompt = value
	case "tool":
		e.Metadata.Tool = value
	case "tool_status":
		e.Metadata.ToolStatus = value
	}
}
