package vocab

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a vocabulary bundle file and swaps every valid new revision
// into a [Store]. An invalid revision is logged and skipped; the store keeps
// serving the last good snapshot.
type Watcher struct {
	path     string
	store    *Store
	interval time.Duration
	onChange func(old, new *Vocabulary)
	onError  func(error)

	mu   sync.Mutex
	seen bundleRevision
}

// bundleRevision identifies one version of the bundle file on disk.
type bundleRevision struct {
	mtime time.Time
	sum   [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOnChange registers a callback invoked after each successful swap.
func WithOnChange(fn func(old, new *Vocabulary)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError registers a callback invoked when a changed file fails to load.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher loads path once, stores the result in store, and returns a
// watcher ready to [Watcher.Run].
func NewWatcher(path string, store *Store, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{path: path, store: store, interval: 5 * time.Second}
	for _, opt := range opts {
		opt(w)
	}

	v, rev, err := w.read()
	if err != nil {
		return nil, fmt.Errorf("vocab: watcher initial load: %w", err)
	}
	w.seen = rev
	store.Swap(v)
	return w, nil
}

// Run polls until ctx is cancelled. It always returns nil so it can sit in an
// errgroup next to the servers.
func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.Check()
		}
	}
}

// Check performs a single poll. It reports whether a new snapshot was
// installed.
func (w *Watcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("vocab watcher: stat failed", "path", w.path, "err", err)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if info.ModTime().Equal(w.seen.mtime) {
		return false
	}

	v, rev, err := w.read()
	switch {
	case err != nil:
		slog.Warn("vocab watcher: keeping previous vocabulary", "path", w.path, "err", err)
		if w.onError != nil {
			w.onError(err)
		}
		return false
	case rev.sum == w.seen.sum:
		w.seen = rev
		return false
	}
	w.seen = rev

	old := w.store.Swap(v)
	slog.Info("vocab watcher: vocabulary reloaded", "path", w.path, "entries", v.Len())
	if w.onChange != nil {
		w.onChange(old, v)
	}
	return true
}

func (w *Watcher) read() (*Vocabulary, bundleRevision, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, bundleRevision{}, err
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, bundleRevision{}, err
	}
	v, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, bundleRevision{}, err
	}
	return v, bundleRevision{mtime: info.ModTime(), sum: sha256.Sum256(data)}, nil
}
