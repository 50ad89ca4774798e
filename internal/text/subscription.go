package text

import "sync"

// Subscription detaches a listener. Unsubscribe is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe detaches the listener.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

type listeners[T any] struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(T)
}

func newListeners[T any]() *listeners[T] {
	return &listeners[T]{fns: make(map[int]func(T))}
}

func (l *listeners[T]) add(fn func(T)) *Subscription {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	return NewSubscription(func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	})
}

func (l *listeners[T]) notify(v T) {
	l.mu.RLock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (l *listeners[T]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fns)
}
