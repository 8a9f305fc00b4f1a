package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/notesift/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go Watch(ctx, root, testutil.Quiet(), func(context.Context) { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(root, "note.txt"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "watcher never fired")

	time.Sleep(2 * DebounceInterval)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go Watch(ctx, root, testutil.Quiet(), func(context.Context) { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".notesift-tmp-1"), []byte("x"), 0o644)

	time.Sleep(3 * DebounceInterval)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestIsNoteFile(t *testing.T) {
	cases := map[string]bool{
		"/a/b.txt":            true,
		"/a/B.MD":             true,
		"/a/.hidden.txt":      false,
		"/a/.notesift-tmp-12": false,
		"/a/c.json":           false,
	}
	for p, want := range cases {
		if got := isNoteFile(p); got != want {
			t.Errorf("isNoteFile(%q) = %v, want %v", p, got, want)
		}
	}
}
