package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file on change and hands validated updates
// to the subscriber. Invalid edits are reported and otherwise ignored, so
// a bad save never takes the running daemon down.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching bool

	// Updates receives each successfully reloaded config.
	Updates chan *Config
	// Errors receives reload failures (read or validation errors).
	Errors chan error
}

func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:    path,
		watcher: fw,
		Updates: make(chan *Config, 1),
		Errors:  make(chan error, 4),
	}, nil
}

// Start watches the config file's directory until ctx is cancelled.
// Watching the directory instead of the file survives editors that
// replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.watcher.Close()
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()

	// Editors fire several events per save; debounce before reloading.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		case <-pending:
			pending = nil
			cfg, err := LoadConfig(w.path)
			if err != nil {
				w.report(fmt.Errorf("reload %s: %w", w.path, err))
				continue
			}
			select {
			case w.Updates <- cfg:
			default:
				// Subscriber is behind; drop the stale update.
				select {
				case <-w.Updates:
				default:
				}
				w.Updates <- cfg
			}
		}
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
