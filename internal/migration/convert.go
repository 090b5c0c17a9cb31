package migration

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkwell-ai/inkwell/internal/codec"
	"github.com/inkwell-ai/inkwell/internal/session"
	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// bareDate matches filename stems like "2024-03-17" or "2024-03-17 14-02",
// which carry no usable title information.
var bareDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([ _-]\d{2}[-:]\d{2}([-:]\d{2})?)?$`)

// roleMarker matches the section markers of the legacy transcript format:
// "**User:**", "### Assistant", "User:" and similar variations.
var roleMarker = regexp.MustCompile(`^(?:#+\s*|\*\*)?(User|You|Assistant|AI|Model|System)(?::\*\*|\*\*:?|:)?\s*$`)

// migrateConversations converts legacy per-document conversation transcripts
// into session documents. The whole legacy folder is archived verbatim
// before any transcript is transformed; archive failures are recorded
// per file and do not stop conversion.
func (e *Engine) migrateConversations(ctx context.Context, report *Report) {
	entries, err := e.vault.List(ctx, e.legacyFolder())
	if err != nil {
		report.fail(e.legacyFolder(), err)
		return
	}

	var names []string
	for _, entry := range entries {
		if entry.Kind != vault.KindDocument || !strings.HasSuffix(entry.Name, ".md") {
			continue
		}
		report.TotalFound++
		names = append(names, entry.Name)
	}

	for _, name := range names {
		e.archive(ctx, name, report)
	}

	for _, name := range names {
		src := e.legacyFolder() + "/" + name
		report.Processed++
		if err := e.convertTranscript(ctx, src, name); err != nil {
			report.fail(src, err)
			continue
		}
		report.Created++
		if err := e.vault.Delete(ctx, src); err != nil {
			report.fail(src, err)
		}
	}
}

// archive copies one legacy transcript verbatim into the archive folder.
func (e *Engine) archive(ctx context.Context, name string, report *Report) {
	src := e.legacyFolder() + "/" + name
	dst := e.archiveFolder() + "/conversations/" + name

	content, err := e.vault.Read(ctx, src)
	if err != nil {
		report.fail(src, err)
		return
	}
	if err := e.vault.Modify(ctx, dst, content); err != nil {
		report.fail(dst, err)
		return
	}
	report.BackupCreated = true
}

// convertTranscript parses one legacy transcript and writes it back as a
// session document in the history folder.
func (e *Engine) convertTranscript(ctx context.Context, src, name string) error {
	content, err := e.vault.Read(ctx, src)
	if err != nil {
		return err
	}
	transcript := parseTranscript(content)

	stem := strings.TrimSuffix(name, ".md")
	title := stem
	if bareDate.MatchString(stem) {
		if first := firstUserLine(transcript); first != "" {
			title = first
		}
	}
	title = session.SanitizeTitle(title)

	created := time.Now()
	if info, err := e.vault.Stat(ctx, src); err == nil && !info.ModTime.IsZero() {
		created = info.ModTime
	}

	sess := &types.ChatSession{
		ID:    ulid.Make().String(),
		Type:  types.AgentSession,
		Title: title,
		Context: types.AgentContext{
			ContextFiles:        []string{},
			EnabledTools:        []types.ToolCategory{types.CategoryReadOnly, types.CategoryVaultMutate},
			RequireConfirmation: []types.ActionKind{types.ActionDelete, types.ActionModify},
			MaxContextChars:     types.DefaultMaxContextChars,
			MaxCharsPerFile:     types.DefaultMaxCharsPerFile,
		},
		Created:    created,
		LastActive: created,
		Metadata:   map[string]any{"auto_labeled": true, "migrated_from": src},
	}
	sess.HistoryPath = e.sessionTarget(ctx, title)

	doc, err := codec.EncodeDocument(sess, transcript)
	if err != nil {
		return err
	}
	return e.vault.Create(ctx, sess.HistoryPath, doc)
}

// sessionTarget picks a conflict-free path in the history folder.
func (e *Engine) sessionTarget(ctx context.Context, title string) string {
	base := e.historyFolder() + "/" + title
	path := base + ".md"
	for i := 1; e.vault.Exists(ctx, path); i++ {
		path = base + " (" + strconv.Itoa(i) + ").md"
	}
	return path
}

// parseTranscript splits a legacy transcript at role markers. Text before
// the first marker and empty sections are discarded.
func parseTranscript(content string) []types.ConversationEntry {
	var (
		entries []types.ConversationEntry
		role    types.Role
		lines   []string
		active  bool
	)
	flush := func() {
		if !active {
			return
		}
		msg := strings.TrimSpace(strings.Join(lines, "\n"))
		if msg != "" {
			entries = append(entries, types.ConversationEntry{Role: role, Message: msg})
		}
		lines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if m := roleMarker.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			active = true
			switch m[1] {
			case "User", "You":
				role = types.RoleUser
			case "System":
				role = types.RoleSystem
			default:
				role = types.RoleModel
			}
			continue
		}
		if active {
			lines = append(lines, line)
		}
	}
	flush()
	return entries
}

// firstUserLine returns the first line of the first user message, trimmed
// to a title-sized length.
func firstUserLine(entries []types.ConversationEntry) string {
	for _, e := range entries {
		if e.Role != types.RoleUser {
			continue
		}
		line := strings.TrimSpace(strings.SplitN(e.Message, "\n", 2)[0])
		if len(line) > 60 {
			line = strings.TrimSpace(line[:60])
		}
		return line
	}
	return ""
}
