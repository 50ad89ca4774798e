package csync

import "sync"

// Map is a mutex-guarded map with generic key and value types.
type Map[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewMap creates an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// Set stores value under key, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

// GetOrCreate returns the value under key, calling create to fill it when absent.
// create runs under the write lock and must not touch the map. The second
// result reports whether create was called.
func (m *Map[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	m.mu.RLock()
	value, ok := m.data[key]
	m.mu.RUnlock()
	if ok {
		return value, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, false
	}
	value = create()
	m.data[key] = value
	return value, true
}

// Delete removes key.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// DeleteIf removes key only when match reports true for the stored value.
// It returns whether an entry was removed.
func (m *Map[K, V]) DeleteIf(key K, match func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok || !match(value) {
		return false
	}
	delete(m.data, key)
	return true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Values returns a copy of all stored values in unspecified order.
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([]V, 0, len(m.data))
	for _, value := range m.data {
		values = append(values, value)
	}
	return values
}

// Clear removes every entry and returns the values that were stored.
func (m *Map[K, V]) Clear() []V {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]V, 0, len(m.data))
	for _, value := range m.data {
		values = append(values, value)
	}
	m.data = make(map[K]V)
	return values
}
