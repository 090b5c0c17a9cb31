package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
)

// FS is a filesystem-backed Vault rooted at a single directory.
type FS struct {
	root string

	mu    sync.Mutex
	locks map[string]*docLock
}

// NewFS creates a filesystem vault rooted at root.
func NewFS(root string) *FS {
	return &FS{
		root:  root,
		locks: make(map[string]*docLock),
	}
}

// Root returns the vault root directory.
func (v *FS) Root() string { return v.root }

func (v *FS) abs(path string) string {
	return filepath.Join(v.root, filepath.FromSlash(path))
}

func (v *FS) rel(abs string) string {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (v *FS) Read(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func (v *FS) Create(ctx context.Context, path, content string) error {
	abs := v.abs(path)
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	return v.write(abs, content)
}

func (v *FS) Modify(ctx context.Context, path, content string) error {
	return v.write(v.abs(path), content)
}

// write performs a locked, atomic temp-file-then-rename write.
func (v *FS) write(abs, content string) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := v.getLock(abs)
	if err := lock.acquire(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.release()

	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (v *FS) Rename(ctx context.Context, oldPath, newPath string) error {
	oldAbs, newAbs := v.abs(oldPath), v.abs(newPath)
	if _, err := os.Stat(oldAbs); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("%s: %w", newPath, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(newAbs), 0755); err != nil {
		return err
	}
	return os.Rename(oldAbs, newAbs)
}

func (v *FS) Delete(ctx context.Context, path string) error {
	lock := v.getLock(v.abs(path))
	if err := lock.acquire(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.release()

	if err := os.Remove(v.abs(path)); err != nil {
		if os.IsNotExist(err) {
			return nil // Already gone
		}
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (v *FS) Exists(ctx context.Context, path string) bool {
	_, err := os.Stat(v.abs(path))
	return err == nil
}

func (v *FS) Stat(ctx context.Context, path string) (Entry, error) {
	info, err := os.Stat(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	kind := KindDocument
	if info.IsDir() {
		kind = KindFolder
	}
	return Entry{
		Path:    path,
		Name:    info.Name(),
		Kind:    kind,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (v *FS) List(ctx context.Context, folder string) ([]Entry, error) {
	dir := v.abs(folder)
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			continue // Skip entries that vanish mid-listing
		}
		kind := KindDocument
		if item.IsDir() {
			kind = KindFolder
		}
		entries = append(entries, Entry{
			Path:    v.rel(filepath.Join(dir, item.Name())),
			Name:    item.Name(),
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

func (v *FS) Glob(ctx context.Context, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(v.root), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var paths []string
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(v.root, m))
		if err != nil || info.IsDir() {
			continue
		}
		paths = append(paths, filepath.ToSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *FS) Mkdir(ctx context.Context, folder string) error {
	return os.MkdirAll(v.abs(folder), 0755)
}

// docLock serializes writers of one document. The in-process mutex covers
// goroutines; the flock on a ".lock" sidecar covers other processes that
// have the vault open, such as the note-taking app itself. The sidecar is
// removed on release so it never shows up as vault content.
type docLock struct {
	mu      sync.Mutex
	sidecar string
	f       *os.File
}

func (l *docLock) acquire() error {
	l.mu.Lock()
	f, err := os.OpenFile(l.sidecar, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		l.mu.Unlock()
		return err
	}
	l.f = f
	return nil
}

func (l *docLock) release() {
	if l.f != nil {
		syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
		l.f.Close()
		os.Remove(l.sidecar)
		l.f = nil
	}
	l.mu.Unlock()
}

// getLock returns the per-document lock for an absolute path.
func (v *FS) getLock(abs string) *docLock {
	v.mu.Lock()
	defer v.mu.Unlock()

	lock, ok := v.locks[abs]
	if !ok {
		lock = &docLock{sidecar: abs + ".lock"}
		v.locks[abs] = lock
	}
	return lock
}

// Basename returns a path's final element without its extension.
func Basename(path string) string {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
