// Package watch reloads a preference store when another process rewrites
// its file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Reloader is implemented by *prefs.Store.
type Reloader interface {
	Reload() error
}

type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithNotify registers a callback invoked after every reload attempt.
func WithNotify(fn func(error)) Option {
	return func(w *Watcher) { w.notify = fn }
}

// Watcher watches the directory holding the file rather than the file
// itself, so atomic replacements (a rename over the target) are seen too.
type Watcher struct {
	path     string
	target   Reloader
	debounce time.Duration
	logger   *slog.Logger
	notify   func(error)

	fw   *fsnotify.Watcher
	done chan struct{}
}

func New(path string, target Reloader, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		target:   target,
		debounce: defaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers the watch and runs the event loop in a goroutine until
// ctx is cancelled. Events after Start returns are guaranteed to be seen.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fw = fw
	w.logger.Info("watching preferences for changes", "path", w.path)

	go w.loop(ctx)
	return nil
}

// Run is Start followed by waiting for the loop to exit.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-w.Done()
	return nil
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("preferences watcher stopped")
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("preferences file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			err := w.target.Reload()
			if err != nil {
				w.logger.Error("reloading preferences failed", "path", w.path, "error", err)
			} else {
				w.logger.Info("reloaded preferences", "path", w.path)
			}
			if w.notify != nil {
				w.notify(err)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("preferences watcher error", "error", err)
		}
	}
}
