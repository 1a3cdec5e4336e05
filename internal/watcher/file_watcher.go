// Package watcher keeps the index current while a project is edited. File
// system events are coalesced, debounced and turned into one index update
// per burst.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/project-atlas/internal/scanner"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// UpdateFunc applies pending changes to the index. paths lists the
// project-relative files that produced events since the previous call; it
// is informational, the update itself rescans.
type UpdateFunc func(ctx context.Context, paths []string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFilter sets the predicate deciding which project-relative paths are
// source files. Defaults to accepting every path.
func WithFilter(match func(rel string) bool) Option {
	return func(w *Watcher) { w.match = match }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher watches a project tree recursively.
type Watcher struct {
	root     string
	update   UpdateFunc
	debounce time.Duration
	match    func(rel string) bool
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool
}

// New creates a watcher over root. Directories that are never indexed
// (node_modules, .git, .atlas, build output) are not watched.
func New(root string, update UpdateFunc, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		root:     root,
		update:   update,
		debounce: DefaultDebounce,
		match:    func(string) bool { return true },
		logger:   slog.Default(),
		pending:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then stops the debouncer,
// waits for an in-flight update and closes the underlying watcher. A
// Watcher runs once.
func (w *Watcher) Run(ctx context.Context) error {
	deb := NewDebouncer(w.debounce, func() { w.flush(ctx) })
	defer w.fsw.Close()
	defer deb.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				deb.Trigger()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// handle records a relevant event and reports whether it should trigger an
// update.
func (w *Watcher) handle(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if event.Has(fsnotify.Create) {
		if isDir(event.Name) {
			if scanner.IsSkippedDir(filepath.Base(event.Name)) {
				return false
			}
			if err := w.addDirectoriesRecursively(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", rel, "error", err)
			}
			// Files created together with the directory raise no events of
			// their own.
			return true
		}
	}

	if !w.shouldProcessEvent(event, rel) {
		return false
	}

	w.mu.Lock()
	w.pending[rel] = true
	w.mu.Unlock()
	return true
}

// shouldProcessEvent keeps writes, creates, removes and renames of source
// files. A removed or renamed path without an extension may have been a
// directory holding source files, so it is kept too.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event, rel string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.match(rel) {
		return true
	}
	gone := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	return gone && filepath.Ext(rel) == ""
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()
	sort.Strings(paths)

	if ctx.Err() != nil {
		return
	}
	w.logger.Debug("changes detected", "files", len(paths))
	if err := w.update(ctx, paths); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("index update failed", "error", err)
	}
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// If it's the root path, fail immediately
			if path == rootPath {
				return err
			}
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootPath && scanner.IsSkippedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
