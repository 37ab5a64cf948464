package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const layerMemory = "memory"

type memoryItem struct {
	entry   Entry
	evictAt time.Time
}

// MemoryStore is an in-process Store. Entries are evicted lazily once their
// retention has passed.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

// Get returns a copy of the entry stored under key.
func (m *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key.String()
	item, ok := m.items[k]
	if !ok {
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}
	if time.Now().After(item.evictAt) {
		delete(m.items, k)
		CacheEntries.WithLabelValues(layerMemory).Set(float64(len(m.items)))
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	entry := item.entry
	recordHit(layerMemory, &entry)
	return &entry, nil
}

// Set stores a copy of entry.
func (m *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key.String()] = memoryItem{
		entry:   *entry,
		evictAt: time.Now().Add(entry.Retention()),
	}
	CacheEntries.WithLabelValues(layerMemory).Set(float64(len(m.items)))
	return nil
}

// Delete removes the entry stored under key.
func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key.String())
	CacheEntries.WithLabelValues(layerMemory).Set(float64(len(m.items)))
	return nil
}

// Len returns the number of retained entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
