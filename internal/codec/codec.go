// Package codec maps a chat session and its conversation entries to and
// from a single markdown document: a YAML frontmatter block followed by one
// section per turn. The mapping is bijective as far as practical so the
// documents double as the session database.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// sectionDelim separates turn sections in the document body.
const sectionDelim = "---"

// roleHeaders maps entry roles to their section headers.
var roleHeaders = map[types.Role]string{
	types.RoleUser:   "## User",
	types.RoleModel:  "## Model",
	types.RoleSystem: "## System",
}

// sessionFrontmatter is the on-disk shape of the session metadata block.
// Optional fields are omitted entirely rather than written as nulls;
// Temperature and TopP stay pointers so an explicit zero survives.
type sessionFrontmatter struct {
	ID                  string         `yaml:"id"`
	Type                string         `yaml:"type"`
	Title               string         `yaml:"title"`
	Created             time.Time      `yaml:"created"`
	Updated             time.Time      `yaml:"updated"`
	ContextFiles        []string       `yaml:"context_files,omitempty"`
	EnabledTools        []string       `yaml:"enabled_tools,omitempty"`
	RequireConfirmation []string       `yaml:"require_confirmation,omitempty"`
	MaxContextChars     int            `yaml:"max_context_chars,omitempty"`
	MaxCharsPerFile     int            `yaml:"max_chars_per_file,omitempty"`
	SourceNote          string         `yaml:"source_note,omitempty"`
	Model               string         `yaml:"model,omitempty"`
	Temperature         *float64       `yaml:"temperature,omitempty"`
	TopP                *float64       `yaml:"top_p,omitempty"`
	PromptTemplate      string         `yaml:"prompt_template,omitempty"`
	Metadata            map[string]any `yaml:"metadata,omitempty"`
}

// EncodeSession renders the frontmatter block for a session, with an empty
// body. Context files and the source note are written as [[link]] tokens so
// note renames do not orphan them.
func EncodeSession(s *types.ChatSession) (string, error) {
	fm := sessionFrontmatter{
		ID:              s.ID,
		Type:            string(s.Type),
		Title:           s.Title,
		Created:         s.Created.UTC().Truncate(time.Second),
		Updated:         s.LastActive.UTC().Truncate(time.Second),
		MaxContextChars: s.Context.MaxContextChars,
		MaxCharsPerFile: s.Context.MaxCharsPerFile,
		Metadata:        s.Metadata,
	}

	for _, f := range s.Context.ContextFiles {
		fm.ContextFiles = append(fm.ContextFiles, vault.MakeLink(f))
	}
	for _, c := range s.Context.EnabledTools {
		fm.EnabledTools = append(fm.EnabledTools, string(c))
	}
	for _, k := range s.Context.RequireConfirmation {
		fm.RequireConfirmation = append(fm.RequireConfirmation, string(k))
	}
	if s.SourceNotePath != "" {
		fm.SourceNote = vault.MakeLink(s.SourceNotePath)
	}
	if mc := s.ModelConfig; !mc.IsZero() {
		fm.Model = mc.Model
		fm.Temperature = mc.Temperature
		fm.TopP = mc.TopP
		fm.PromptTemplate = mc.PromptTemplate
	}

	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode session frontmatter: %w", err)
	}
	return vault.JoinFrontmatter(string(out), "\n"), nil
}

// EncodeDocument renders a complete session document.
func EncodeDocument(s *types.ChatSession, entries []types.ConversationEntry) (string, error) {
	doc, err := EncodeSession(s)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		doc = AppendEntry(doc, e)
	}
	return doc, nil
}

// EncodeEntry renders one turn section, without surrounding delimiters.
// A model entry carrying a UserMessage expands into a synthetic user
// section followed by the model section; this covers persisting the first
// model turn of a session with no prior user turn on record.
func EncodeEntry(e types.ConversationEntry) string {
	var b strings.Builder

	if e.Role == types.RoleModel && e.UserMessage != "" {
		user := types.ConversationEntry{
			Role:     types.RoleUser,
			Message:  e.UserMessage,
			Metadata: types.EntryMetadata{Time: e.Metadata.Time},
		}
		b.WriteString(EncodeEntry(user))
		b.WriteString("\n\n" + sectionDelim + "\n\n")
		e.UserMessage = ""
	}

	header, ok := roleHeaders[e.Role]
	if !ok {
		header = roleHeaders[types.RoleSystem]
	}
	b.WriteString(header)

	// Metadata table: only defined fields get a row.
	m := e.Metadata
	if !m.Time.IsZero() {
		b.WriteString("\n- time: " + m.Time.UTC().Format(time.RFC3339))
	}
	if m.NoteVersion != "" {
		b.WriteString("\n- note_version: " + m.NoteVersion)
	}
	if e.Model != "" {
		b.WriteString("\n- model: " + e.Model)
	}
	if m.Temperature != nil {
		b.WriteString("\n- temperature: " + formatFloat(*m.Temperature))
	}
	if m.TopP != nil {
		b.WriteString("\n- top_p: " + formatFloat(*m.TopP))
	}
	if m.Prompt != "" {
		b.WriteString("\n- prompt: " + m.Prompt)
	}
	if m.Tool != "" {
		b.WriteString("\n- tool: " + m.Tool)
	}
	if m.ToolStatus != "" {
		b.WriteString("\n- tool_status: " + m.ToolStatus)
	}

	b.WriteString("\n\n")
	b.WriteString(quote(e.Message))

	return b.String()
}

// AppendEntry appends a turn to an existing document, stripping any
// trailing section delimiter before appending and re-adding it afterwards
// so repeated appends never accumulate duplicate delimiters. The
// frontmatter block's own closing delimiter is never touched.
func AppendEntry(doc string, e types.ConversationEntry) string {
	head, body := splitHead(doc)

	body = strings.TrimRight(body, " \t\n")
	if strings.HasSuffix(body, "\n"+sectionDelim) {
		body = strings.TrimRight(body[:len(body)-len(sectionDelim)], " \t\n")
	} else if body == sectionDelim {
		body = ""
	}

	section := EncodeEntry(e)
	if body == "" {
		return head + "\n" + section + "\n\n" + sectionDelim + "\n"
	}
	return head + body + "\n\n" + section + "\n\n" + sectionDelim + "\n"
}

// ReplaceFrontmatter re-renders a session's metadata block in an existing
// document while preserving its turn sections.
func ReplaceFrontmatter(s *types.ChatSession, doc string) (string, error) {
	fresh, err := EncodeSession(s)
	if err != nil {
		return "", err
	}
	_, body := splitHead(doc)
	if strings.TrimSpace(body) == "" {
		return fresh, nil
	}
	head, _ := splitHead(fresh)
	return head + body, nil
}

// splitHead separates the frontmatter block (closing delimiter included)
// from the document body.
func splitHead(doc string) (head, body string) {
	if !strings.HasPrefix(doc, sectionDelim+"\n") {
		return "", doc
	}
	rest := doc[len(sectionDelim)+1:]
	idx := strings.Index(rest, "\n"+sectionDelim+"\n")
	if idx < 0 {
		return doc, ""
	}
	cut := len(sectionDelim) + 1 + idx + len("\n"+sectionDelim+"\n")
	return doc[:cut], doc[cut:]
}

// quote prefixes every message line with the blockquote marker.
func quote(message string) string {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
