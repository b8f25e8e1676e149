package faultlog

import (
	"sync"
)

// MemoryStore is an in-memory fault journal for testing.
// Records are lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]Record // busID -> faults in append order
	closed bool
}

// NewMemoryStore creates a new in-memory fault journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.data[rec.Bus] = append(m.data[rec.Bus], rec)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(busID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	recs, ok := m.data[busID]
	if !ok {
		return nil, nil
	}

	// Return a copy to prevent modification
	result := make([]Record, len(recs))
	copy(result, recs)
	return result, nil
}

// Purge implements Store.
func (m *MemoryStore) Purge(busID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, busID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
