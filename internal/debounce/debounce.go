// Package debounce runs an action once a key has been quiet for a fixed delay.
//
// Each Trigger for a key cancels the pending countdown for that key and starts
// a new one, so at most one action is pending per key. Timers fire on their own
// goroutine; the firing is handed to a dispatch function (typically the
// controller loop) and re-checked there, so an action superseded after its
// timer fired is still dropped.
package debounce

import (
	"sync"
	"time"
)

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop prevents the callback from running and reports whether it was pending.
	Stop() bool
}

// Scheduler creates single-shot timers.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Clock is the real-time Scheduler backed by time.AfterFunc.
type Clock struct{}

// AfterFunc implements Scheduler.
func (Clock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type pending struct {
	gen   uint64
	timer Timer
}

// Debouncer schedules per-key actions.
type Debouncer[K comparable] struct {
	delay    time.Duration
	sched    Scheduler
	dispatch func(func())

	mu      sync.Mutex
	gen     uint64
	pending map[K]pending
}

// New creates a Debouncer. A nil sched uses Clock; a nil dispatch runs the
// action on the timer's goroutine.
func New[K comparable](delay time.Duration, sched Scheduler, dispatch func(func())) *Debouncer[K] {
	if sched == nil {
		sched = Clock{}
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Debouncer[K]{
		delay:    delay,
		sched:    sched,
		dispatch: dispatch,
		pending:  make(map[K]pending),
	}
}

// Delay returns the quiescence window.
func (d *Debouncer[K]) Delay() time.Duration {
	return d.delay
}

// Trigger (re)starts the countdown for key. fn runs once the key has been
// quiet for the full delay.
func (d *Debouncer[K]) Trigger(key K, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	timer := d.sched.AfterFunc(d.delay, func() {
		d.dispatch(func() {
			if d.claim(key, gen) {
				fn()
			}
		})
	})
	d.pending[key] = pending{gen: gen, timer: timer}
}

// claim removes the pending entry for key if it still belongs to gen.
func (d *Debouncer[K]) claim(key K, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen {
		return false
	}
	delete(d.pending, key)
	return true
}

// Cancel drops the pending action for key and reports whether one existed.
func (d *Debouncer[K]) Cancel(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// CancelAll drops every pending action.
func (d *Debouncer[K]) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether an action is scheduled for key.
func (d *Debouncer[K]) Pending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
