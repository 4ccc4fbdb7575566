package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*memoryItem
	stop  chan struct{}
	once  sync.Once
	now   func() time.Time
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store. Close stops its cleanup loop.
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		stop:  make(chan struct{}),
		now:   time.Now,
	}

	go store.cleanupExpired(5 * time.Minute)

	return store
}

// SetIfAbsent stores value under key unless a live entry already exists.
// It reports whether the value was stored.
func (ms *MemoryStore) SetIfAbsent(key, value string, expiration time.Duration) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if item, ok := ms.items[key]; ok && ms.now().Before(item.expireTime) {
		return false
	}
	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: ms.now().Add(expiration),
	}
	return true
}

// Get retrieves a value by key (returns empty string if not found or expired)
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists || !ms.now().Before(item.expireTime) {
		return "", false
	}
	return item.value, true
}

// DeleteIfValue removes key only while it still holds value
func (ms *MemoryStore) DeleteIfValue(key, value string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists || item.value != value {
		return false
	}
	delete(ms.items, key)
	return true
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := ms.now()
			for key, item := range ms.items {
				if !now.Before(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

// MemoryClaimer claims pairs inside a single process
type MemoryClaimer struct {
	store *MemoryStore
	owner string
}

// NewMemoryClaimer creates a claimer backed by a MemoryStore
func NewMemoryClaimer(store *MemoryStore) *MemoryClaimer {
	return &MemoryClaimer{store: store, owner: uuid.NewString()}
}

// Claim takes key for ttl. It returns false when another owner holds it.
func (c *MemoryClaimer) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return c.store.SetIfAbsent(key, c.owner, ttl), nil
}

// Release gives key back if this claimer still owns it
func (c *MemoryClaimer) Release(_ context.Context, key string) error {
	c.store.DeleteIfValue(key, c.owner)
	return nil
}
