package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
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

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	r.paths = append(r.paths, p)
	r.mu.Unlock()
}

func (r *recorder) count(p string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.paths {
		if x == p {
			n++
		}
	}
	return n
}

func startWatcher(t *testing.T, paths ...string) *recorder {
	t.Helper()
	w, err := New(quietLogger(), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	if err := w.Sync(paths); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rec := &recorder{}
	go w.Run(ctx, rec.add)
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatcher_WriteReported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "list.txt")
	_ = os.WriteFile(p, []byte("a"), 0o644)

	rec := startWatcher(t, p)
	_ = os.WriteFile(p, []byte("b"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rec.count(p) > 0
	}, "write not reported")
}

func TestWatcher_BurstCoalesced(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "burst.txt")
	_ = os.WriteFile(p, []byte("0"), 0o644)

	rec := startWatcher(t, p)
	for i := 0; i < 10; i++ {
		_ = os.WriteFile(p, []byte{byte('0' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rec.count(p) > 0
	}, "burst not reported")
	time.Sleep(200 * time.Millisecond)
	if n := rec.count(p); n != 1 {
		t.Errorf("reported %d times, want 1", n)
	}
}

func TestWatcher_ReplaceByRenameReported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "atomic.txt")
	_ = os.WriteFile(p, []byte("old"), 0o644)

	rec := startWatcher(t, p)
	tmp := filepath.Join(dir, ".tmp")
	_ = os.WriteFile(tmp, []byte("new"), 0o644)
	_ = os.Rename(tmp, p)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rec.count(p) > 0
	}, "rename replacement not reported")
}

func TestWatcher_UnwatchedSiblingIgnored(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tracked.txt")
	other := filepath.Join(dir, "other.txt")
	_ = os.WriteFile(p, []byte("a"), 0o644)

	rec := startWatcher(t, p)
	_ = os.WriteFile(other, []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := rec.count(other); n != 0 {
		t.Errorf("sibling reported %d times", n)
	}
}

func TestSyncReplacesSet(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a := filepath.Join(dirA, "a.txt")
	b := filepath.Join(dirB, "b.txt")

	w, err := New(quietLogger(), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Sync([]string{a, "", a}); err != nil {
		t.Fatal(err)
	}
	if !w.Watched(a) || w.Watched(b) {
		t.Fatal("unexpected watched set after first sync")
	}
	if err := w.Sync([]string{b}); err != nil {
		t.Fatal(err)
	}
	if w.Watched(a) || !w.Watched(b) {
		t.Error("unexpected watched set after second sync")
	}
	if len(w.dirs) != 1 || w.dirs[dirB] != 1 {
		t.Errorf("dirs = %v", w.dirs)
	}
}

func TestSyncMissingDirectory(t *testing.T) {
	w, err := New(quietLogger(), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	missing := filepath.Join(t.TempDir(), "nope", "x.txt")
	if err := w.Sync([]string{missing}); err == nil {
		t.Error("expected error for a missing directory")
	}
	if len(w.dirs) != 0 {
		t.Errorf("dirs = %v", w.dirs)
	}
}
