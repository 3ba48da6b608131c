package store

import (
	"context"
	"sync"

	"github.com/marketlens/marketlens/internal/domain"
)

// Compile-time checks.
var (
	_ DocumentStore = (*Memory)(nil)
	_ KV            = (*MemoryKV)(nil)
)

// Memory is an in-process document store. Insertion order is preserved so the
// index can break similarity ties deterministically.
type Memory struct {
	mu   sync.RWMutex
	docs []domain.Document
	byID map[string]int
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

// Add appends documents. A document with a known ID replaces the stored one
// in place, keeping its original insertion position.
func (m *Memory) Add(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range docs {
		if i, ok := m.byID[d.ID]; ok {
			m.docs[i] = d
			continue
		}
		m.byID[d.ID] = len(m.docs)
		m.docs = append(m.docs, d)
	}
	return nil
}

// All returns a copy of the stored documents in insertion order.
func (m *Memory) All(_ context.Context) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

// Count returns the number of stored documents.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}

// MemoryKV is an in-process KV store backing the embedding cache when no
// Redis is configured.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string][]byte)}
}

// Get retrieves a value by key.
func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.m[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a value at the given key.
func (kv *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	kv.m[key] = v
	return nil
}
