// Package session owns the in-memory registry of chat sessions and their
// write-through persistence into the vault via the codec.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/inkwell-ai/inkwell/internal/codec"
	"github.com/inkwell-ai/inkwell/internal/event"
	"github.com/inkwell-ai/inkwell/internal/logging"
	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Store manages chat sessions: creation, lookup, mutation, and durable
// flushes to each session's backing document.
type Store struct {
	vault vault.Vault
	cfg   *types.Config

	mu       sync.RWMutex
	sessions map[string]*types.ChatSession

	// flushes serializes document writes per session so two concurrent
	// appends to the same backing document cannot interleave.
	flushesMu sync.Mutex
	flushes   map[string]*sync.Mutex
}

// NewStore creates a session store over the vault. Folder pre-creation is
// best-effort: a failure is logged and surfaces later on the first flush.
func NewStore(v vault.Vault, cfg *types.Config) *Store {
	s := &Store{
		vault:    v,
		cfg:      cfg,
		sessions: make(map[string]*types.ChatSession),
		flushes:  make(map[string]*sync.Mutex),
	}

	ctx := context.Background()
	for _, folder := range []string{s.AgentFolder(), s.ChatFolder()} {
		if err := v.Mkdir(ctx, folder); err != nil {
			logging.Warn().Err(err).Str("folder", folder).Msg("failed to prepare session folder")
		}
	}
	return s
}

// AgentFolder is where free-standing agent session documents live.
func (s *Store) AgentFolder() string {
	return s.cfg.StateFolder + "/history"
}

// ChatFolder is where note-bound chat documents live.
func (s *Store) ChatFolder() string {
	return s.cfg.StateFolder + "/chats"
}

// CreateSession allocates and registers a new session. The backing
// document is not written here; it materializes on the first flush.
func (s *Store) CreateSession(ctx context.Context, kind types.SessionType, title string, initial *types.AgentContext) *types.ChatSession {
	now := time.Now()

	if strings.TrimSpace(title) == "" {
		if kind == types.AgentSession {
			title = "Agent Session " + now.Format("Jan 2, 2006")
		} else {
			title = "Note Chat"
		}
	}
	title = SanitizeTitle(title)

	agentCtx := defaultContext(kind, s.cfg)
	if initial != nil {
		agentCtx = initial.Clone()
	}

	sess := &types.ChatSession{
		ID:         ulid.Make().String(),
		Type:       kind,
		Title:      title,
		Context:    agentCtx,
		Created:    now,
		LastActive: now,
	}
	sess.HistoryPath = s.derivePath(ctx, kind, title)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logging.Debug().Str("id", sess.ID).Str("title", title).Str("kind", string(kind)).Msg("session created")
	event.Publish(event.Event{Type: event.SessionCreated, Data: event.SessionData{
		SessionID: sess.ID, Title: sess.Title, Path: sess.HistoryPath,
	}})
	return sess
}

// derivePath maps a sanitized title to its backing document path. Agent
// sessions sidestep an existing document with a numeric suffix; note chats
// keep the deterministic path so lookups can find the document again.
func (s *Store) derivePath(ctx context.Context, kind types.SessionType, title string) string {
	folder := s.ChatFolder()
	if kind == types.AgentSession {
		folder = s.AgentFolder()
	}

	path := folder + "/" + title + ".md"
	if kind != types.AgentSession {
		return path
	}
	for i := 2; s.vault.Exists(ctx, path); i++ {
		path = fmt.Sprintf("%s/%s %d.md", folder, title, i)
	}
	return path
}

// GetSession is a pure in-memory lookup.
func (s *Store) GetSession(id string) (*types.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// FindSession resolves a session ID, falling back to the backing
// documents when it is not registry-resident. A session found on disk is
// registered before it is returned.
func (s *Store) FindSession(ctx context.Context, id string) (*types.ChatSession, error) {
	if sess, ok := s.GetSession(id); ok {
		return sess, nil
	}

	loaded, err := s.ListRecentAgentSessions(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, sess := range loaded {
		if sess.ID != id {
			continue
		}
		s.mu.Lock()
		s.sessions[sess.ID] = sess
		s.mu.Unlock()
		return sess, nil
	}
	return nil, fmt.Errorf("unknown session: %s", id)
}

// GetOrLoadNoteSession returns the chat session bound to a source note,
// loading it from its backing document or creating it fresh.
func (s *Store) GetOrLoadNoteSession(ctx context.Context, sourceNote string) (*types.ChatSession, error) {
	s.mu.RLock()
	for _, sess := range s.sessions {
		if sess.Type == types.NoteChat && sess.SourceNotePath == sourceNote {
			s.mu.RUnlock()
			return sess, nil
		}
	}
	s.mu.RUnlock()

	title := SanitizeTitle(vault.Basename(sourceNote) + " Chat")
	path := s.ChatFolder() + "/" + title + ".md"

	if content, err := s.vault.Read(ctx, path); err == nil {
		sess, _, derr := codec.Decode(ctx, content, path, s.vault)
		if derr != nil {
			return nil, fmt.Errorf("failed to load chat for %s: %w", sourceNote, derr)
		}
		if sess.SourceNotePath == "" {
			sess.SourceNotePath = sourceNote
		}
		s.mu.Lock()
		s.sessions[sess.ID] = sess
		s.mu.Unlock()
		return sess, nil
	}

	sess := s.CreateSession(ctx, types.NoteChat, vault.Basename(sourceNote)+" Chat", nil)
	sess.SourceNotePath = sourceNote
	return sess, nil
}

// ContextUpdate is a partial update of a session's context; nil fields are
// left untouched.
type ContextUpdate struct {
	EnabledTools        *[]types.ToolCategory
	RequireConfirmation *[]types.ActionKind
	MaxContextChars     *int
	MaxCharsPerFile     *int
}

// UpdateContext applies a partial context update. Unknown ids are a no-op,
// not an error.
func (s *Store) UpdateContext(ctx context.Context, id string, upd ContextUpdate) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	if upd.EnabledTools != nil {
		sess.Context.EnabledTools = append([]types.ToolCategory(nil), (*upd.EnabledTools)...)
	}
	if upd.RequireConfirmation != nil {
		sess.Context.RequireConfirmation = append([]types.ActionKind(nil), (*upd.RequireConfirmation)...)
	}
	if upd.MaxContextChars != nil {
		sess.Context.MaxContextChars = *upd.MaxContextChars
	}
	if upd.MaxCharsPerFile != nil {
		sess.Context.MaxCharsPerFile = *upd.MaxCharsPerFile
	}
	s.mu.Unlock()

	return s.touch(ctx, sess)
}

// UpdateModelConfig replaces the session's model override wholesale. An
// empty config clears the override entirely rather than merging.
func (s *Store) UpdateModelConfig(ctx context.Context, id string, mc *types.ModelConfig) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	if mc.IsZero() {
		sess.ModelConfig = nil
	} else {
		copied := *mc
		sess.ModelConfig = &copied
	}
	s.mu.Unlock()

	return s.touch(ctx, sess)
}

// AddContextFiles appends note paths to the session's context, ignoring
// duplicates and preserving insertion order. Unknown ids are a no-op.
func (s *Store) AddContextFiles(ctx context.Context, id string, files ...string) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	seen := make(map[string]bool, len(sess.Context.ContextFiles))
	for _, f := range sess.Context.ContextFiles {
		seen[f] = true
	}
	for _, f := range files {
		if !seen[f] {
			sess.Context.ContextFiles = append(sess.Context.ContextFiles, f)
			seen[f] = true
		}
	}
	s.mu.Unlock()

	return s.touch(ctx, sess)
}

// RemoveContextFiles removes note paths from the session's context.
func (s *Store) RemoveContextFiles(ctx context.Context, id string, paths ...string) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}

	s.mu.Lock()
	kept := sess.Context.ContextFiles[:0]
	for _, f := range sess.Context.ContextFiles {
		if !drop[f] {
			kept = append(kept, f)
		}
	}
	sess.Context.ContextFiles = kept
	s.mu.Unlock()

	return s.touch(ctx, sess)
}

// touch updates lastActive and, for agent sessions, flushes the metadata
// block through to the backing document before the mutation is considered
// durable.
func (s *Store) touch(ctx context.Context, sess *types.ChatSession) error {
	s.mu.Lock()
	sess.LastActive = time.Now()
	s.mu.Unlock()

	if sess.Type != types.AgentSession {
		return nil
	}
	if err := s.Flush(ctx, sess.ID); err != nil {
		return err
	}
	event.Publish(event.Event{Type: event.SessionUpdated, Data: event.SessionData{
		SessionID: sess.ID, Title: sess.Title, Path: sess.HistoryPath,
	}})
	return nil
}

// Flush writes the session's metadata block to its backing document,
// creating the document if this is the first write.
func (s *Store) Flush(ctx context.Context, id string) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	lock := s.flushLock(id)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.vault.Read(ctx, sess.HistoryPath)
	if err != nil && !errors.Is(err, vault.ErrNotFound) {
		return err
	}

	doc, err := codec.ReplaceFrontmatter(sess, existing)
	if err != nil {
		return err
	}
	return s.vault.Modify(ctx, sess.HistoryPath, doc)
}

// AppendEntry persists one conversation turn to the session's backing
// document, materializing it on first use.
func (s *Store) AppendEntry(ctx context.Context, id string, e types.ConversationEntry) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return fmt.Errorf("session %s: %w", id, vault.ErrNotFound)
	}

	lock := s.flushLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	sess.LastActive = time.Now()
	s.mu.Unlock()

	doc, err := s.vault.Read(ctx, sess.HistoryPath)
	if err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			return err
		}
		doc, err = codec.EncodeSession(sess)
		if err != nil {
			return err
		}
	}

	doc = codec.AppendEntry(doc, e)
	doc, err = codec.ReplaceFrontmatter(sess, doc)
	if err != nil {
		return err
	}
	return s.vault.Modify(ctx, sess.HistoryPath, doc)
}

// Entries reads the session's persisted conversation.
func (s *Store) Entries(ctx context.Context, id string) ([]types.ConversationEntry, error) {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil, nil
	}

	doc, err := s.vault.Read(ctx, sess.HistoryPath)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	_, entries, err := codec.Decode(ctx, doc, sess.HistoryPath, s.vault)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRecentAgentSessions loads agent session documents, most recently
// modified first, skipping (with a warning) any that fail to parse.
func (s *Store) ListRecentAgentSessions(ctx context.Context, limit int) ([]*types.ChatSession, error) {
	listing, err := s.vault.List(ctx, s.AgentFolder())
	if err != nil {
		return nil, err
	}

	type loaded struct {
		sess    *types.ChatSession
		modTime time.Time
	}

	var (
		mu     sync.Mutex
		result []loaded
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, entry := range listing {
		if entry.Kind != vault.KindDocument || !strings.HasSuffix(entry.Name, ".md") {
			continue
		}
		entry := entry
		g.Go(func() error {
			content, err := s.vault.Read(gctx, entry.Path)
			if err != nil {
				logging.Warn().Err(err).Str("path", entry.Path).Msg("skipping unreadable session document")
				return nil
			}
			sess, _, err := codec.Decode(gctx, content, entry.Path, s.vault)
			if err != nil {
				logging.Warn().Err(err).Str("path", entry.Path).Msg("skipping malformed session document")
				return nil
			}
			// Prefer the live registry object when one exists.
			if resident, ok := s.GetSession(sess.ID); ok {
				sess = resident
			}
			mu.Lock()
			result = append(result, loaded{sess: sess, modTime: entry.ModTime})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].modTime.After(result[j].modTime)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	sessions := make([]*types.ChatSession, len(result))
	for i, l := range result {
		sessions[i] = l.sess
	}
	return sessions, nil
}

// RenameSession retitles a session and relocates its backing document,
// keeping the frontmatter in step. A conflicting target gains a numeric
// suffix.
func (s *Store) RenameSession(ctx context.Context, id, newTitle string) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	title := SanitizeTitle(newTitle)
	if title == "" || title == sess.Title {
		return nil
	}

	folder := s.ChatFolder()
	if sess.Type == types.AgentSession {
		folder = s.AgentFolder()
	}
	newPath := folder + "/" + title + ".md"
	for i := 2; s.vault.Exists(ctx, newPath); i++ {
		newPath = fmt.Sprintf("%s/%s %d.md", folder, title, i)
	}

	oldTitle, oldPath := sess.Title, sess.HistoryPath

	// Reassign the registered path before touching the filesystem: the
	// vault watcher reports the old path as removed during the rename,
	// and that must not evict a session that is merely moving.
	s.mu.Lock()
	sess.Title = title
	sess.HistoryPath = newPath
	s.mu.Unlock()

	if s.vault.Exists(ctx, oldPath) {
		if err := s.vault.Rename(ctx, oldPath, newPath); err != nil {
			s.mu.Lock()
			sess.Title = oldTitle
			sess.HistoryPath = oldPath
			s.mu.Unlock()
			return fmt.Errorf("failed to rename session document: %w", err)
		}
	}

	return s.touch(ctx, sess)
}

// DeleteSession removes the backing document and evicts the session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return nil
	}

	if err := s.vault.Delete(ctx, sess.HistoryPath); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	event.Publish(event.Event{Type: event.SessionDeleted, Data: event.SessionData{
		SessionID: id, Path: sess.HistoryPath,
	}})
	return nil
}

// EvictByPath drops any registered session whose backing document lives at
// path. The vault watcher calls this when a document is removed outside
// the core, reconciling registry and store.
func (s *Store) EvictByPath(path string) {
	s.mu.Lock()
	var evicted []string
	for id, sess := range s.sessions {
		if sess.HistoryPath == path {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		logging.Info().Str("id", id).Str("path", path).Msg("session evicted, backing document removed externally")
		event.Publish(event.Event{Type: event.SessionEvicted, Data: event.SessionData{SessionID: id, Path: path}})
	}
}

// WatchBackingDocuments starts a filesystem watcher over the state folder
// that reconciles the registry when a backing document is removed outside
// the core. The caller owns the returned watcher and must Stop it. Only
// filesystem vaults support watching.
func (s *Store) WatchBackingDocuments() (*vault.Watcher, error) {
	fs, ok := s.vault.(*vault.FS)
	if !ok {
		return nil, fmt.Errorf("vault does not support watching")
	}
	w, err := vault.NewWatcher(fs, s.cfg.StateFolder, s.EvictByPath)
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

func (s *Store) flushLock(id string) *sync.Mutex {
	s.flushesMu.Lock()
	defer s.flushesMu.Unlock()
	lock, ok := s.flushes[id]
	if !ok {
		lock = &sync.Mutex{}
		s.flushes[id] = lock
	}
	return lock
}
