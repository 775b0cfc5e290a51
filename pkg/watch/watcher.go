// Package watch reloads a template into a session whenever its file changes
// on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/logging"
	"github.com/goliatone/go-tplform/pkg/session"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Reloader loads a template source into the current session.
// *session.Controller satisfies it.
type Reloader interface {
	Load(ctx context.Context, src document.Source) (session.Session, error)
}

// ReloadFunc is called after every reload attempt.
type ReloadFunc func(session.Session, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.OrNop(logger)
	}
}

// WithOnReload registers fn to run after each reload.
func WithOnReload(fn ReloadFunc) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher watches the directory holding a template file and reloads the
// template when the file is written, created or renamed into place.
type Watcher struct {
	path     string
	target   Reloader
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   logging.Logger
	onReload ReloadFunc

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path. Call Run to start delivering reloads.
func New(path string, target Reloader, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: template path is required")
	}
	if target == nil {
		return nil, errors.New("watch: reload target is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	// Watch the directory: editors often replace the file with a rename,
	// which drops a watch placed on the file itself.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		target:   target,
		watcher:  fsw,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("template change detected", "file", event.Name, "op", event.Op.String())
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("template watcher error", "error", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s, err := w.target.Load(ctx, document.SourceFromFile(w.path))
	if err != nil {
		w.logger.Warn("template reload failed", "file", w.path, "error", err)
	} else {
		w.logger.Info("template reloaded", "file", w.path, "generation", s.Generation(), "fields", s.Placeholders().Len())
	}
	if w.onReload != nil {
		w.onReload(s, err)
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
