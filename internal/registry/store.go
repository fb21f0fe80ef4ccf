package registry

import "sync"

// Store is a concurrency-safe key-value store for cached descriptors.
// Entries live for the lifetime of the store and are never evicted.
type Store[V any] struct {
	items map[string]V
	mu    sync.RWMutex
}

// NewStore creates an empty store.
func NewStore[V any]() *Store[V] {
	return &Store[V]{
		items: make(map[string]V),
	}
}

// Set adds or overwrites the value stored under id.
func (s *Store[V]) Set(id string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = value
}

// Get returns the value stored under id.
func (s *Store[V]) Get(id string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[id]
	return value, ok
}
