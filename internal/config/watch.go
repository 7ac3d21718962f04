package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/activhome/lightstack/internal/card"
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 150 * time.Millisecond

// ReloadFunc receives the reloaded dashboard, or the error that prevented
// loading it. The previous dashboard stays in effect on error.
type ReloadFunc func(d *card.Dashboard, err error)

// Watcher reloads a card file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	fs       *fsnotify.Watcher

	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	inflight sync.WaitGroup // reloads that passed the closed check
	done     chan struct{}
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watch starts watching path and calls fn after each change.
//
// The parent directory is watched rather than the file itself, because many
// editors save by writing a new file and renaming it over the old one.
func Watch(path string, fn ReloadFunc, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onReload: fn,
		fs:       fs,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.onReload != nil {
				w.onReload(nil, fmt.Errorf("file watcher: %w", err))
			}
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed || w.onReload == nil {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	d, err := Load(w.path)
	w.onReload(d, err)
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and waits for a reload that is already running. No
// callback runs after Close returns, so callbacks must not call Close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	w.inflight.Wait()
	return err
}
