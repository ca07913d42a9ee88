package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the seen-set in process memory. It is used for dry runs
// and tests; nothing survives a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[id]
	return v, ok, nil
}

// Put implements Store
func (m *MemoryStore) Put(ctx context.Context, id string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; ok {
		return nil
	}
	m.entries[id] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored ids
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// IDs returns the stored ids in no particular order
func (m *MemoryStore) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	return ids
}

// Close implements Store
func (m *MemoryStore) Close() error { return nil }
