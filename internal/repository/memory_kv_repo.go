package repository

import (
	"context"
	"sync"
)

// MemoryKVRepository keeps keys in process memory. Nothing survives a restart.
type MemoryKVRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKVRepository creates an empty in-memory store
func NewMemoryKVRepository() *MemoryKVRepository {
	return &MemoryKVRepository{data: make(map[string]string)}
}

func (r *MemoryKVRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.data[key]
	return value, ok, nil
}

func (r *MemoryKVRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}

func (r *MemoryKVRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

// Len returns the number of stored keys
func (r *MemoryKVRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
