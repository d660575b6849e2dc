package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_FiresAfterSettle(t *testing.T) {
	dir := t.TempDir()

	settled := make(chan []string, 1)
	w, err := NewWatcher(dir, nil, func(ctx context.Context, paths []string) {
		select {
		case settled <- paths:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	// Shorten the debounce window so the test settles quickly
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte("conversations:\n- - Hi\n  - Hello\n"), 0644); err != nil {
		t.Fatalf("write corpus file: %v", err)
	}

	select {
	case paths := <-settled:
		found := false
		for _, p := range paths {
			if p == path {
				found = true
			}
		}
		if !found {
			t.Errorf("expected settled batch to contain %s, got %v", path, paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher callback")
	}
}

func TestWatcher_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()

	settled := make(chan []string, 1)
	w, err := NewWatcher(dir, nil, func(ctx context.Context, paths []string) {
		select {
		case settled <- paths:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case paths := <-settled:
		t.Errorf("expected no callback for non-YAML file, got %v", paths)
	case <-time.After(300 * time.Millisecond):
		// No callback fired
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "does-not-exist"), nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected Start to fail for missing directory")
	}

	// Watcher never started, close the underlying handle directly
	if err := w.watcher.Close(); err != nil {
		t.Fatalf("close watcher: %v", err)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !w.IsWatching() {
		t.Error("expected watcher to be running")
	}

	w.Stop()
	w.Stop()

	if w.IsWatching() {
		t.Error("expected watcher to be stopped")
	}
}
