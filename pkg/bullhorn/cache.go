package bullhorn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
)

// Cache is a pluggable key/value store for lookups the client can reuse,
// such as the candidate id behind an email address.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached value with an optional expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry has an expiry in the past.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// CacheOptions are applied to any backend.
type CacheOptions struct {
	// TTL of entries written by the client. Zero means entries never expire.
	TTL time.Duration
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL: constants.DefaultCandidateCacheTTL,
	}
}

type memoryItem struct {
	entry    *CacheEntry
	storedAt time.Time
}

// MemoryCache is an in-process cache bounded to maxSize entries.
// When full, the oldest entry is evicted.
type MemoryCache struct {
	mutex   sync.RWMutex
	items   map[string]*memoryItem
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		items:   make(map[string]*memoryItem),
		maxSize: maxSize,
	}
}

// Get retrieves an unexpired entry.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	if item.entry.Expired(time.Now()) {
		c.deleteIfCurrent(key, item)

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return item.entry, nil
}

// deleteIfCurrent removes key only while it still holds item, so a fresh
// entry stored after the expired read survives.
func (c *MemoryCache) deleteIfCurrent(key string, item *memoryItem) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.items[key] == item {
		delete(c.items, key)
	}
}

// Set stores an entry, evicting the oldest one if the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.items[key] = &memoryItem{entry: entry, storedAt: time.Now()}

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*memoryItem)

	return nil
}

// Has checks if an unexpired entry exists.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// evictOldest must be called with the write lock held.
func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for key, item := range c.items {
		if oldestKey == "" || item.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = item.storedAt
		}
	}

	delete(c.items, oldestKey)
}
