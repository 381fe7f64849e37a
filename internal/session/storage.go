// Package session implements the login gate for the portal.
//
// Authentication state is a single flag kept in browser-local storage. There
// is no server-side session object: whoever holds a Storage with the flag set
// is logged in.
package session

import "sync"

// Storage is browser-local key/value storage scoped to one browsing context.
type Storage interface {
	// GetItem returns the stored value and whether the key was present.
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is an in-memory Storage.
// Used by tests and by the wasm build when localStorage is unavailable.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]string),
	}
}

// GetItem retrieves a value by key.
func (s *MemoryStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok
}

// SetItem stores a value.
func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// RemoveItem deletes a value. Removing a missing key is a no-op.
func (s *MemoryStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}
