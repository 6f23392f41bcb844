package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestWatcherStartBadDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	err = w.Start(context.Background())
	if err == nil {
		t.Fatal("expected error watching a missing directory")
	}

	// A failed Start must release the slot so the caller can retry;
	// only a running loop reports the watcher as busy.
	w.mu.Lock()
	watching := w.watching
	w.mu.Unlock()
	if watching {
		t.Error("watching still set after failed Start")
	}
	if err := w.Start(context.Background()); err != nil && strings.Contains(err.Error(), "already running") {
		t.Errorf("retry reported busy watcher: %v", err)
	}
}

func TestWatcherStartTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("second Start should fail while the loop is running")
	}
}
