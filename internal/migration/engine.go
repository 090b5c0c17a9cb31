// Package migration performs the one-time, idempotent transformation of
// legacy on-disk session layouts into the current layout. It is gated by a
// marker document and never raises to its caller: every per-file failure
// lands in the report and the marker is written even on partial failure so
// a bad batch does not retry forever.
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell-ai/inkwell/internal/event"
	"github.com/inkwell-ai/inkwell/internal/logging"
	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Report accumulates the outcome of a migration run.
type Report struct {
	TotalFound    int      `json:"totalFound"`
	Processed     int      `json:"processed"`
	Created       int      `json:"created"`
	Failed        int      `json:"failed"`
	BackupCreated bool     `json:"backupCreated"`
	Errors        []string `json:"errors,omitempty"`
}

func (r *Report) fail(path string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", path, err))
	logging.Warn().Err(err).Str("path", path).Msg("migration step failed")
}

// Engine runs the migration generations against a vault.
type Engine struct {
	vault vault.Vault
	cfg   *types.Config
}

// NewEngine creates a migration engine.
func NewEngine(v vault.Vault, cfg *types.Config) *Engine {
	return &Engine{vault: v, cfg: cfg}
}

func (e *Engine) stateFolder() string   { return e.cfg.StateFolder }
func (e *Engine) historyFolder() string { return e.cfg.StateFolder + "/history" }
func (e *Engine) legacyFolder() string  { return e.cfg.StateFolder + "/conversations" }
func (e *Engine) archiveFolder() string { return e.cfg.StateFolder + "/archive" }

// MarkerPath is where the completion marker lives. Its existence alone
// gates re-running; content is informational.
func (e *Engine) MarkerPath() string {
	return e.cfg.StateFolder + "/.inkwell-migrated"
}

// Run executes all migration generations once. The marker check happens
// before any folder listing so repeated startups stay cheap. Run never
// returns an error; consult the report.
func (e *Engine) Run(ctx context.Context) *Report {
	report := &Report{}

	if e.vault.Exists(ctx, e.MarkerPath()) {
		return report
	}

	e.migrateFlatLayout(ctx, report)
	e.migrateConversations(ctx, report)

	e.writeMarker(ctx, report)

	event.Publish(event.Event{Type: event.MigrationCompleted, Data: event.MigrationData{
		Processed: report.Processed,
		Created:   report.Created,
		Failed:    report.Failed,
	}})
	logging.Info().
		Int("found", report.TotalFound).
		Int("processed", report.Processed).
		Int("created", report.Created).
		Int("failed", report.Failed).
		Msg("migration finished")
	return report
}

// migrateFlatLayout relocates session documents from the state folder root
// (and its stray subfolders) into the history subfolder. Paths flatten
// into single filenames; documents already at the root take a prefix so
// they cannot collide with flattened foldered ones. An existing target
// means the source is deleted, never overwritten.
func (e *Engine) migrateFlatLayout(ctx context.Context, report *Report) {
	docs := e.collectFlatDocs(ctx, e.stateFolder(), "", report)
	report.TotalFound += len(docs)

	for _, rel := range docs {
		src := e.stateFolder() + "/" + rel
		dst := e.historyFolder() + "/" + flattenPath(rel)

		report.Processed++
		if e.vault.Exists(ctx, dst) {
			// Destination is already migrated; drop the source
			// rather than duplicating content.
			if err := e.vault.Delete(ctx, src); err != nil {
				report.fail(src, err)
			}
			continue
		}
		if err := e.vault.Rename(ctx, src, dst); err != nil {
			report.fail(src, err)
		}
	}
}

// collectFlatDocs finds legacy documents under folder, skipping the
// folders owned by the current layout.
func (e *Engine) collectFlatDocs(ctx context.Context, folder, prefix string, report *Report) []string {
	skip := map[string]bool{"history": true, "chats": true, "archive": true, "conversations": true}

	entries, err := e.vault.List(ctx, folder)
	if err != nil {
		report.fail(folder, err)
		return nil
	}

	var docs []string
	for _, entry := range entries {
		rel := entry.Name
		if prefix != "" {
			rel = prefix + "/" + entry.Name
		}
		switch entry.Kind {
		case vault.KindFolder:
			if prefix == "" && skip[entry.Name] {
				continue
			}
			docs = append(docs, e.collectFlatDocs(ctx, folder+"/"+entry.Name, rel, report)...)
		case vault.KindDocument:
			if !strings.HasSuffix(entry.Name, ".md") {
				continue
			}
			docs = append(docs, rel)
		}
	}
	return docs
}

// flattenPath turns a relative document path into a single filename.
func flattenPath(rel string) string {
	if !strings.Contains(rel, "/") {
		return "root_" + rel
	}
	return strings.ReplaceAll(rel, "/", "_")
}

// writeMarker records completion. Failure to write the marker is itself
// reported, but the run still counts as finished.
func (e *Engine) writeMarker(ctx context.Context, report *Report) {
	content := fmt.Sprintf("Migration completed %s\nmigrated: %d\n",
		time.Now().Format(time.RFC1123), report.Processed)
	if err := e.vault.Modify(ctx, e.MarkerPath(), content); err != nil {
		report.fail(e.MarkerPath(), err)
	}
}
