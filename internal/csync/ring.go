package csync

import "sync"

// Ring is a bounded, append-only history. Once full, each append drops the
// oldest element.
type Ring[T any] struct {
	mu    sync.RWMutex
	data  []T
	limit int
	total int
}

// NewRing creates a Ring holding at most limit elements. A limit below one is
// treated as one.
func NewRing[T any](limit int) *Ring[T] {
	if limit < 1 {
		limit = 1
	}
	return &Ring[T]{
		data:  make([]T, 0, limit),
		limit: limit,
	}
}

// Append adds elements, evicting the oldest ones past the limit.
func (r *Ring[T]) Append(elements ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total += len(elements)
	r.data = append(r.data, elements...)
	if over := len(r.data) - r.limit; over > 0 {
		r.data = append(r.data[:0], r.data[over:]...)
	}
}

// Len returns the number of retained elements.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Total returns how many elements were ever appended, evicted ones included.
func (r *Ring[T]) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Last returns the most recent element.
func (r *Ring[T]) Last() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if len(r.data) == 0 {
		return zero, false
	}
	return r.data[len(r.data)-1], true
}

// Snapshot returns a copy of the retained elements, oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.data))
	copy(out, r.data)
	return out
}
