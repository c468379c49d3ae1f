// Package watcher reacts to answer-file changes on disk. It wraps fsnotify
// with per-path debouncing so editors that save in bursts trigger a single
// ingest, and reports deletions so stale answers can be dropped.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the configured directories. Watching is flat:
// subdirectories are not descended into, matching how directories are
// ingested.
type Watcher struct {
	roots      []string
	extensions []string // normalized to lowercase with a leading dot
	onIngest   func(path string)
	onRemove   func(path string)
	delay      time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	running bool

	quit     chan struct{}
	quitOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger enables debug logging of file events.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the window in which repeated writes to the same
// file collapse into one ingest.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// NewWatcher builds a watcher over roots. onIngest fires for created or
// modified files with a listed extension, after debouncing; onRemove fires
// for deleted or renamed-away ones. An empty extension list accepts every
// file.
func NewWatcher(roots, extensions []string, onIngest, onRemove func(path string), opts ...WatcherOption) *Watcher {
	cleaned := make([]string, len(roots))
	for i, r := range roots {
		cleaned[i] = filepath.Clean(r)
	}
	w := &Watcher{
		roots:      cleaned,
		extensions: normalizeExts(extensions),
		onIngest:   onIngest,
		onRemove:   onRemove,
		delay:      defaultDebounce,
		pending:    make(map[string]*time.Timer),
		quit:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// normalizeExts lowercases extensions and guarantees a leading dot.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// Start begins watching. Roots that do not exist yet are created. The
// watcher runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := watchRoot(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}

	w.fsw = fsw
	w.running = true
	if w.logger != nil {
		w.logger.Debug("watching directories",
			zap.Strings("roots", w.roots),
			zap.Strings("extensions", w.extensions))
	}
	go w.loop(ctx, fsw)
	return nil
}

// watchRoot registers root with fsw, creating the directory when missing.
func watchRoot(fsw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return fsw.Add(root)
}

// loop consumes fsnotify events until shutdown. It holds its own reference
// to the fsnotify watcher so Stop can nil the field without a race.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.quit:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("fsnotify error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.owns(path) || !w.wantsExt(path) {
		return
	}
	if w.logger != nil {
		w.logger.Debug("file event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		w.schedule(path)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.forget(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// owns reports whether path lies in one of the watched roots. Roots are
// fixed after construction, so no locking is needed here.
func (w *Watcher) owns(path string) bool {
	for _, root := range w.roots {
		if path == root {
			return true
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// wantsExt reports whether path carries an ingestible extension.
func (w *Watcher) wantsExt(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// schedule arms, or re-arms, the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.delay, func() { w.fire(path) })
}

// fire delivers the debounced ingest callback for path.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	logger := w.logger
	w.mu.Unlock()

	if logger != nil {
		logger.Debug("ingesting changed file", zap.String("path", path))
	}
	if w.onIngest != nil {
		w.onIngest(path)
	}
}

// forget cancels a pending ingest for path after it was removed.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// Stop shuts the watcher down and cancels pending ingests. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.running {
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		_ = w.fsw.Close()
		w.fsw = nil
		w.running = false
	}
	w.mu.Unlock()
	w.quitOnce.Do(func() { close(w.quit) })
}
