package storage

import (
	"sort"
	"sync"
)

// MemoryStore keeps values in a map. It is safe for concurrent use and is
// meant for tests, the CLI and single-instance deployments.
type MemoryStore struct {
	data map[string]string
	mu   sync.RWMutex

	// MaxValueSize simulates a storage quota when > 0.
	MaxValueSize int

	// MaxKeys caps the number of stored keys when > 0. Overwrites of an
	// existing key are always allowed.
	MaxKeys int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set writes value under key.
func (m *MemoryStore) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if m.MaxValueSize > 0 && len(value) > m.MaxValueSize {
		return ErrValueTooLarge
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists && m.MaxKeys > 0 && len(m.data) >= m.MaxKeys {
		return ErrStoreFull
	}
	m.data[key] = value
	return nil
}

// Remove deletes key.
func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Snapshot returns a copy of the stored data.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
