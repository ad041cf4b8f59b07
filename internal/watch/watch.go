// Package watch re-runs builds when PHP sources or composer manifests under
// the watched roots change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phobologic/phpdocgen/internal/composer"
	"github.com/phobologic/phpdocgen/internal/discover"
)

// DefaultDebounce applies when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Roots []string
	// Filter decides which directories are watched and which files count
	// as changes.
	Filter discover.Options
	// Debounce is how long to wait for more changes before rebuilding.
	Debounce time.Duration
	Logger   *slog.Logger
}

// RebuildFunc is called with the sorted set of changed paths.
type RebuildFunc func(ctx context.Context, changed []string)

// Watcher collects filesystem events and calls a RebuildFunc once they
// settle. Rebuilds never overlap.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	rebuild RebuildFunc

	pending map[string]fsnotify.Op
}

// New creates a Watcher. Directories are registered by Run.
func New(cfg Config, rebuild RebuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	roots := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		roots = append(roots, abs)
	}
	cfg.Roots = roots
	return &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		logger:  logger,
		rebuild: rebuild,
		pending: make(map[string]fsnotify.Op),
	}, nil
}

// Run watches until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for _, root := range w.cfg.Roots {
		if err := w.addRecursive(root, root); err != nil {
			return err
		}
	}
	w.logger.Info("watching for changes", "roots", w.cfg.Roots, "debounce", w.cfg.Debounce)

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.cfg.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) addRecursive(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(root, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) skipDir(root, path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	return w.cfg.Filter.Excluded(filepath.ToSlash(rel))
}

// rootOf returns the watched root containing path.
func (w *Watcher) rootOf(path string) (string, bool) {
	for _, root := range w.cfg.Roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// handle records a relevant event, reporting whether it was one.
func (w *Watcher) handle(event fsnotify.Event) bool {
	root, ok := w.rootOf(event.Name)
	if !ok {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skipDir(root, event.Name) {
				return false
			}
			if err := w.addRecursive(root, event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			// Files may have landed before the watch was added.
			w.pending[event.Name] = event.Op
			return true
		}
	}

	name := filepath.Base(event.Name)
	if name != composer.FileName && !w.cfg.Filter.Source(name) {
		return false
	}
	rel, err := filepath.Rel(root, event.Name)
	if err == nil && w.cfg.Filter.Excluded(filepath.ToSlash(rel)) {
		return false
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	w.pending[event.Name] = event.Op
	w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	sort.Strings(changed)
	w.pending = make(map[string]fsnotify.Op)
	w.rebuild(ctx, changed)
}
