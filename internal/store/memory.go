package store

import (
	"context"
	"sync"
)

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and single-node deployments
// that do not need persistence. NewMemory should be used to create instances.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string][]byte),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.collections[collection][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneBytes(val), nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, collection, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureCollection(collection)[key] = cloneBytes(value)
	return nil
}

// GetAll implements Store.
func (m *Memory) GetAll(_ context.Context, collection string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string][]byte, len(m.collections[collection]))
	for k, v := range m.collections[collection] {
		snapshot[k] = cloneBytes(v)
	}
	return snapshot, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], key)
	return nil
}

// Update implements Store. The write lock is held for the full
// read-modify-write, so concurrent updates to the same key serialize.
func (m *Memory) Update(_ context.Context, collection, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.ensureCollection(collection)

	var current []byte
	if v, ok := col[key]; ok {
		current = cloneBytes(v)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	col[key] = cloneBytes(next)
	return nil
}

// ensureCollection returns the named collection, creating it if needed.
// Callers must hold the write lock.
func (m *Memory) ensureCollection(collection string) map[string][]byte {
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string][]byte)
		m.collections[collection] = col
	}
	return col
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
