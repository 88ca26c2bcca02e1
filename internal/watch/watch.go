// Package watch re-runs pipeline generation when watched project files
// change. Events are debounced so a burst of editor saves triggers one
// regeneration, and generated output files are ignored to avoid feedback
// loops.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the settle window applied to filesystem events.
const DefaultDebounce = 500 * time.Millisecond

// skipDirs are never watched. Mirrors the analysis walker's skip list.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
}

// Watcher monitors a project tree and invokes a callback after changes
// settle. The callback runs on the watcher goroutine; a long regeneration
// delays further triggers rather than stacking them.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	pending  map[string]time.Time
	ignore   map[string]bool
	onChange func(context.Context) error
	log      *zap.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore adds base names whose events are dropped, typically the
// generated output file.
func WithIgnore(names ...string) Option {
	return func(w *Watcher) {
		for _, n := range names {
			w.ignore[n] = true
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New builds a watcher over the project root. onChange is invoked once per
// settled batch of events.
func New(root string, onChange func(context.Context) error, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
		ignore:   make(map[string]bool),
		onChange: onChange,
		log:      zap.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the watch points and launches the event loop. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.log.Info("watching project", zap.String("root", w.root), zap.Strings("dirs", w.fsw.WatchList()))

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fsw.Close(); err != nil {
		w.log.Warn("closing watcher", zap.Error(err))
	}
}

// addTree registers the root and every non-skipped subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (skipDirs[name] || hiddenNonCI(name)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// hiddenNonCI reports whether a hidden directory should be skipped. CI
// directories are the one class of hidden dirs that affect generation.
func hiddenNonCI(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	switch name {
	case ".github", ".gitlab", ".circleci":
		return false
	}
	return true
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	name := filepath.Base(event.Name)
	if w.ignore[name] || strings.HasPrefix(name, ".pipewright-") {
		return
	}

	// New directories need their own watch point.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDirs[name] && !hiddenNonCI(name) {
				if err := w.fsw.Add(event.Name); err != nil {
					w.log.Warn("watching new directory", zap.String("dir", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	w.log.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushSettled fires the callback once when every pending event has aged
// past the debounce window.
func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, at := range w.pending {
		if now.Sub(at) < w.debounce {
			w.mu.Unlock()
			return
		}
	}
	changed := len(w.pending)
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	w.log.Info("changes settled, regenerating", zap.Int("events", changed))
	if err := w.onChange(ctx); err != nil {
		w.log.Error("regeneration failed", zap.Error(err))
	}
}
