package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"voxmate/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file for changes and delivers reloaded configs
// to a callback. Rapid editor saves are debounced.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	onChange    func(*Config)
	debounceDur time.Duration
	lastEvent   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for the given config path.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		path:        path,
		onChange:    onChange,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the watch loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.mu.Lock()
			if time.Since(w.lastEvent) < w.debounceDur {
				w.mu.Unlock()
				continue
			}
			w.lastEvent = time.Now()
			w.mu.Unlock()

			cfg, err := Load(w.path)
			if err != nil {
				logging.Boot("config reload failed: %v", err)
				continue
			}
			logging.Boot("config reloaded from %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Boot("config watcher error: %v", err)
		}
	}
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
}
