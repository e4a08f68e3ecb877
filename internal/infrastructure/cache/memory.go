package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      []byte
	expireTime time.Time
}

func (it *memoryItem) expired(now time.Time) bool {
	return !it.expireTime.IsZero() && now.After(it.expireTime)
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		stop:  make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(cleanupInterval)

	return store
}

func newItem(value []byte, ttl time.Duration) *memoryItem {
	item := &memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expireTime = time.Now().Add(ttl)
	}
	return item
}

// Set stores a key-value pair with expiration; ttl <= 0 never expires
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = newItem(value, ttl)
	return nil
}

// SetNX stores the value only when the key is absent or expired
func (ms *MemoryStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if item, exists := ms.items[key]; exists && !item.expired(time.Now()) {
		return false, nil
	}
	ms.items[key] = newItem(value, ttl)
	return true, nil
}

// Get retrieves a value by key
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists || item.expired(time.Now()) {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), item.value...), nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
	return nil
}

// CompareAndDelete removes key when it still holds value
func (ms *MemoryStore) CompareAndDelete(_ context.Context, key string, value []byte) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists || item.expired(time.Now()) || !bytes.Equal(item.value, value) {
		return false, nil
	}
	delete(ms.items, key)
	return true, nil
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if item.expired(now) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
