package object

import (
	"fmt"
	"sync"
)

// Backend persists compressed envelopes keyed by hash. Implementations do
// not interpret the bytes; framing, compression and validation live in
// Store. Get must return an error wrapping ErrObjectNotFound for a missing
// key.
type Backend interface {
	Get(h Hash) ([]byte, error)
	Put(h Hash, data []byte) error
	Has(h Hash) (bool, error)
	Close() error
}

// MemoryBackend keeps objects in a map. It is meant for tests and
// throwaway repositories.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[Hash][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[Hash][]byte)}
}

func (m *MemoryBackend) Get(h Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[h]
	if !ok {
		return nil, fmt.Errorf("memory backend: %w", ErrObjectNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Put(h Hash, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[h]; ok {
		return nil
	}
	m.objects[h] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Has(h Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[h]
	return ok, nil
}

// Len returns the number of stored objects.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryBackend) Close() error { return nil }
