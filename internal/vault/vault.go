// Package vault is the document store boundary: reading, writing, renaming
// and deleting notes, frontmatter access, and wikilink resolution. The agent
// core consumes the Vault interface; FS is the filesystem implementation.
package vault

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a note or folder does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when a create or rename target already exists.
	ErrExists = errors.New("already exists")
)

// Kind tags an Entry as a document or a folder. The host store hands back
// untyped abstract files; the distinction is resolved once here at the
// boundary, never re-derived deeper in the core.
type Kind int

const (
	KindDocument Kind = iota
	KindFolder
)

// Entry describes one item of a folder listing.
type Entry struct {
	// Path is vault-relative with forward slashes.
	Path    string
	Name    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

// Vault is the document store consumed by the agent core. All paths are
// vault-relative with forward slashes.
type Vault interface {
	Read(ctx context.Context, path string) (string, error)
	// Create writes a new note; it fails with ErrExists if one is there.
	Create(ctx context.Context, path, content string) error
	// Modify overwrites an existing note, creating it if absent.
	Modify(ctx context.Context, path, content string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) bool
	Stat(ctx context.Context, path string) (Entry, error)
	// List returns the entries directly under folder, empty when the
	// folder does not exist.
	List(ctx context.Context, folder string) ([]Entry, error)
	// Glob returns document paths matching a doublestar pattern.
	Glob(ctx context.Context, pattern string) ([]string, error)
	Mkdir(ctx context.Context, folder string) error

	// ReadFrontmatter returns the parsed metadata block of a note,
	// nil when the note has none.
	ReadFrontmatter(ctx context.Context, path string) (map[string]any, error)
	// UpdateFrontmatter applies fn to the note's metadata block and
	// rewrites the note, preserving its body.
	UpdateFrontmatter(ctx context.Context, path string, fn func(fm map[string]any)) error

	// ResolveLink resolves a [[wikilink]] token to a note path, relative
	// to the note the token appears in.
	ResolveLink(ctx context.Context, token, fromPath string) (string, error)
}
