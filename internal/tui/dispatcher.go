package tui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// drainMsg wakes the program so it runs posted work.
type drainMsg struct{}

// Dispatcher hands work from background goroutines to the program's Update
// loop. It is the uithread.Dispatcher and uithread.Token of the editor:
// completion sessions post presenter updates to it and check ownership
// against it.
type Dispatcher struct {
	mu    sync.Mutex
	queue []func()
	send  func(tea.Msg)
	woken bool

	owner atomic.Bool
}

// NewDispatcher creates a dispatcher. Work posted before Attach is held
// until a program is attached.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach connects the dispatcher to a program's Send.
func (d *Dispatcher) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	wake := len(d.queue) > 0 && !d.woken
	if wake {
		d.woken = true
	}
	d.mu.Unlock()

	if wake {
		go send(drainMsg{})
	}
}

// Post queues fn for the Update loop. It never blocks, so it is safe to call
// from inside Update.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	send := d.send
	wake := send != nil && !d.woken
	if wake {
		d.woken = true
	}
	d.mu.Unlock()

	if wake {
		go send(drainMsg{})
	}
}

// drain runs queued work in posting order. Work posted while draining waits
// for the next wake up.
func (d *Dispatcher) drain() {
	d.mu.Lock()
	fns := d.queue
	d.queue = nil
	d.woken = false
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Pending returns the number of queued functions.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// IsOwner reports whether the Update loop is running. It does not know
// which goroutine asks, so a background goroutine calling while Update runs
// also passes; ownership checks built on it only catch calls made between
// updates.
func (d *Dispatcher) IsOwner() bool {
	return d.owner.Load()
}

// enter marks the Update loop as running until the returned func is called.
func (d *Dispatcher) enter() func() {
	d.owner.Store(true)
	return func() { d.owner.Store(false) }
}
