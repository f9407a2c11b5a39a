package debounce

import (
	"sync"
	"testing"
	"time"
)

func TestTriggerFiresAfterDelay(t *testing.T) {
	m := NewManual()
	d := New[int](500*time.Millisecond, m, nil)

	runs := 0
	d.Trigger(1, func() { runs++ })

	m.Advance(499 * time.Millisecond)
	if runs != 0 {
		t.Fatalf("fired early: runs = %d", runs)
	}
	m.Advance(time.Millisecond)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if d.Pending(1) {
		t.Error("key should not be pending after firing")
	}
}

func TestTriggerRestartsCountdown(t *testing.T) {
	m := NewManual()
	d := New[int](500*time.Millisecond, m, nil)

	runs := 0
	d.Trigger(1, func() { runs++ })
	m.Advance(400 * time.Millisecond)
	d.Trigger(1, func() { runs++ })
	m.Advance(400 * time.Millisecond)
	if runs != 0 {
		t.Fatalf("superseded countdown fired: runs = %d", runs)
	}
	m.Advance(100 * time.Millisecond)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if m.Pending() != 0 {
		t.Errorf("pending timers = %d", m.Pending())
	}
}

func TestKeysAreIndependent(t *testing.T) {
	m := NewManual()
	d := New[string](time.Second, m, nil)

	var fired []string
	d.Trigger("a", func() { fired = append(fired, "a") })
	m.Advance(500 * time.Millisecond)
	d.Trigger("b", func() { fired = append(fired, "b") })
	m.Advance(500 * time.Millisecond)
	if len(fired) != 1 || fired[0] != "a" {
		t.Fatalf("fired = %v, want [a]", fired)
	}
	m.Advance(500 * time.Millisecond)
	if len(fired) != 2 || fired[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", fired)
	}
}

func TestCancel(t *testing.T) {
	m := NewManual()
	d := New[int](time.Second, m, nil)

	runs := 0
	d.Trigger(7, func() { runs++ })
	if !d.Cancel(7) {
		t.Fatal("Cancel should report a pending action")
	}
	if d.Cancel(7) {
		t.Error("second Cancel should report nothing pending")
	}
	m.Advance(2 * time.Second)
	if runs != 0 {
		t.Errorf("cancelled action ran")
	}
}

func TestCancelAll(t *testing.T) {
	m := NewManual()
	d := New[int](time.Second, m, nil)
	runs := 0
	for i := 0; i < 3; i++ {
		d.Trigger(i, func() { runs++ })
	}
	d.CancelAll()
	m.Advance(time.Minute)
	if runs != 0 {
		t.Errorf("runs = %d after CancelAll", runs)
	}
}

func TestStaleDispatchDropped(t *testing.T) {
	// Queue dispatched work instead of running it, to model a timer that has
	// already fired when the key is re-triggered.
	m := NewManual()
	var queue []func()
	d := New[int](time.Second, m, func(fn func()) { queue = append(queue, fn) })

	runs := 0
	d.Trigger(1, func() { runs++ })
	m.Advance(time.Second)
	if len(queue) != 1 {
		t.Fatalf("queue = %d, want 1", len(queue))
	}

	d.Trigger(1, func() { runs += 10 })
	queue[0]()
	if runs != 0 {
		t.Fatalf("stale firing ran: runs = %d", runs)
	}
	m.Advance(time.Second)
	queue[1]()
	if runs != 10 {
		t.Errorf("runs = %d, want 10", runs)
	}
}

func TestClockScheduler(t *testing.T) {
	d := New[int](10*time.Millisecond, nil, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	d.Trigger(1, wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real timer never fired")
	}
}
