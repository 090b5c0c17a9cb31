package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFS_CreateAndRead(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	if err := v.Create(ctx, "notes/hello.md", "# Hello\n"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := v.Read(ctx, "notes/hello.md")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "# Hello\n" {
		t.Errorf("Read = %q, want %q", got, "# Hello\n")
	}
}

func TestFS_CreateExisting(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	if err := v.Create(ctx, "a.md", "one"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := v.Create(ctx, "a.md", "two")
	if !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got: %v", err)
	}
}

func TestFS_ReadNotFound(t *testing.T) {
	v := NewFS(t.TempDir())

	_, err := v.Read(context.Background(), "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestFS_DeleteMissingIsNil(t *testing.T) {
	v := NewFS(t.TempDir())

	if err := v.Delete(context.Background(), "missing.md"); err != nil {
		t.Errorf("Delete of missing note should be nil, got: %v", err)
	}
}

func TestFS_RenameConflict(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "a.md", "a")
	v.Create(ctx, "b.md", "b")

	err := v.Rename(ctx, "a.md", "b.md")
	if !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got: %v", err)
	}
}

func TestFS_RenameMovesAcrossFolders(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "a.md", "content")
	if err := v.Rename(ctx, "a.md", "archive/deep/a.md"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if v.Exists(ctx, "a.md") {
		t.Error("old path should be gone")
	}
	got, err := v.Read(ctx, "archive/deep/a.md")
	if err != nil || got != "content" {
		t.Errorf("Read after rename = %q, %v", got, err)
	}
}

func TestFS_ListDistinguishesKinds(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "top.md", "x")
	v.Mkdir(ctx, "sub")

	entries, err := v.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	kinds := make(map[string]Kind)
	for _, e := range entries {
		kinds[e.Name] = e.Kind
	}
	if kinds["top.md"] != KindDocument {
		t.Error("top.md should be a document")
	}
	if kinds["sub"] != KindFolder {
		t.Error("sub should be a folder")
	}
}

func TestFS_ListMissingFolderIsEmpty(t *testing.T) {
	v := NewFS(t.TempDir())

	entries, err := v.List(context.Background(), "nope")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty listing, got %d entries", len(entries))
	}
}

func TestFS_Glob(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "a.md", "x")
	v.Create(ctx, "sub/b.md", "x")
	v.Create(ctx, "sub/c.txt", "x")

	paths, err := v.Glob(ctx, "**/*.md")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	want := []string{"a.md", "sub/b.md"}
	if len(paths) != len(want) {
		t.Fatalf("Glob = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Glob[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFS_AtomicWriteLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	v := NewFS(dir)
	ctx := context.Background()

	v.Create(ctx, "a.md", "x")
	v.Modify(ctx, "a.md", "y")

	if _, err := os.Stat(filepath.Join(dir, "a.md.tmp")); !os.IsNotExist(err) {
		t.Error("temp file should not remain after write")
	}
}

func TestFS_ConcurrentWritesLeaveNoLockSidecar(t *testing.T) {
	dir := t.TempDir()
	v := NewFS(dir)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := v.Modify(ctx, "busy.md", strings.Repeat("x", n+1)); err != nil {
				t.Errorf("Modify failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if _, err := os.Stat(filepath.Join(dir, "busy.md.lock")); !os.IsNotExist(err) {
		t.Error("lock sidecar should not remain after writes")
	}
	if got, err := v.Read(ctx, "busy.md"); err != nil || got == "" {
		t.Errorf("Read after concurrent writes = %q, %v", got, err)
	}
}

func TestBasename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"notes/hello.md", "hello"},
		{"hello.md", "hello"},
		{"a/b/c.tar.gz", "c.tar"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Basename(tt.in); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
