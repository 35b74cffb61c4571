package store

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key]
	if !ok {
		return Entry{Key: key}, nil
	}
	entry.Value = append([]byte(nil), entry.Value...)
	return entry, nil
}

func (b *MemoryBackend) Put(_ context.Context, key string, value []byte, expected int64) (Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entries[key].Version != expected {
		return Entry{}, ErrConflict
	}
	entry := Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		Version:   expected + 1,
		UpdatedAt: time.Now(),
	}
	b.entries[key] = entry
	return entry, nil
}

func (b *MemoryBackend) Versions(_ context.Context, keys []string) (map[string]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	versions := make(map[string]int64, len(keys))
	for _, key := range keys {
		versions[key] = b.entries[key].Version
	}
	return versions, nil
}
