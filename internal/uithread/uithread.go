// Package uithread models the single goroutine that owns the editing surface.
//
// Completion sessions accept most calls only from that goroutine. The Token
// lets them check it; the Dispatcher lets background work hand results back.
package uithread

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token answers whether the calling goroutine currently owns the UI.
type Token interface {
	IsOwner() bool
}

// Dispatcher runs functions on the UI goroutine.
type Dispatcher interface {
	// Post schedules fn and returns immediately.
	Post(fn func())
}

// Free is a Token that accepts every caller. Headless tools use it.
var Free Token = free{}

type free struct{}

func (free) IsOwner() bool { return true }

// Inline is a Dispatcher that runs fn on the posting goroutine.
var Inline Dispatcher = inline{}

type inline struct{}

func (inline) Post(fn func()) { fn() }

// Loop is a headless UI goroutine: posted functions run one at a time, in
// order, on a single goroutine.
type Loop struct {
	queue   chan func()
	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// NewLoop starts a loop. Stop it with Close.
func NewLoop() *Loop {
	l := &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for fn := range l.queue {
		l.running.Store(true)
		fn()
		l.running.Store(false)
	}
}

// Post schedules fn on the loop. Posting after Close is a no-op.
func (l *Loop) Post(fn func()) {
	defer func() {
		// send on closed channel after Close
		_ = recover()
	}()
	l.queue <- fn
}

// Do runs fn on the loop and waits for it to finish or ctx to end.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsOwner reports whether the loop is executing a posted function. The loop
// is the only goroutine running posted work, so callers inside Do or Post
// callbacks pass; callers elsewhere pass only while the loop happens to be
// busy, which makes the check a best-effort diagnostic.
func (l *Loop) IsOwner() bool {
	return l.running.Load()
}

// Close stops accepting work and waits for queued functions to drain.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.queue)
	})
	<-l.done
}
