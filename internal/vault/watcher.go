package vault

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/inkwell-ai/inkwell/internal/logging"
)

// Watcher watches a vault folder for externally removed notes so the
// session registry can reconcile itself with the backing store.
type Watcher struct {
	watcher  *fsnotify.Watcher
	vault    *FS
	onRemove func(path string)
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over folder (vault-relative, recursive one
// level of pre-existing subfolders). onRemove receives vault-relative paths.
func NewWatcher(v *FS, folder string, onRemove func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := v.abs(folder)
	if err := os.MkdirAll(root, 0755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, err
	}

	// Watch existing subfolders too; session folders are shallow.
	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if e.IsDir() {
			_ = fw.Add(filepath.Join(root, e.Name()))
		}
	}

	return &Watcher{
		watcher:  fw,
		vault:    v,
		onRemove: onRemove,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins delivering removal notifications.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				rel := w.vault.rel(ev.Name)
				logging.Debug().Str("path", rel).Msg("vault note removed")
				if w.onRemove != nil {
					w.onRemove(rel)
				}
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subfolder: extend the watch.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(ev.Name)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("vault watcher error")
		}
	}
}

// Stop shuts the watcher down and waits for the run loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}
