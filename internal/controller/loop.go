package controller

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrStopped is returned for work submitted to a stopped Loop.
var ErrStopped = errors.New("controller: loop stopped")

// Loop runs submitted functions one at a time on a single goroutine.
type Loop struct {
	work    chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	started atomic.Bool
	closed  atomic.Bool
}

// NewLoop creates a Loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		work:    make(chan func(), 256),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run executes submitted work until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case fn := <-l.work:
			fn()
		}
	}
}

// Close stops the loop and waits for the running function to return.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.stopCh)
	}
	if l.started.Load() {
		<-l.stopped
	}
}

// Post queues fn without waiting and reports whether it was accepted.
func (l *Loop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.work <- fn:
		return true
	case <-l.stopCh:
		return false
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	if l.closed.Load() {
		return ErrStopped
	}
	select {
	case l.work <- wrapped:
	case <-l.stopCh:
		return ErrStopped
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Executor runs controller operations serially.
type Executor interface {
	Exec(ctx context.Context, fn func(*Controller) error) error
}

// Serial executes operations for one Controller on a Loop.
type Serial struct {
	loop *Loop
	ctrl *Controller
}

// NewSerial binds ctrl to loop.
func NewSerial(loop *Loop, ctrl *Controller) *Serial {
	return &Serial{loop: loop, ctrl: ctrl}
}

// Exec implements Executor.
func (s *Serial) Exec(ctx context.Context, fn func(*Controller) error) error {
	var err error
	if lerr := s.loop.Do(ctx, func() { err = fn(s.ctrl) }); lerr != nil {
		return lerr
	}
	return err
}

// Direct runs operations on the calling goroutine. The caller provides
// serialization.
type Direct struct {
	Ctrl *Controller
}

// Exec implements Executor.
func (d Direct) Exec(_ context.Context, fn func(*Controller) error) error {
	return fn(d.Ctrl)
}

var (
	_ Executor = (*Serial)(nil)
	_ Executor = Direct{}
)
