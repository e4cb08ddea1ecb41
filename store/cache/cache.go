// Package cache provides an in-memory TTL cache used by the store layer.
package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds the cache configuration.
type Config struct {
	// DefaultTTL is the default time-to-live for cache entries.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
	// MaxItems caps the number of entries; 0 means unlimited.
	MaxItems int
	// OnEviction is called when an entry is evicted or expires.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL-based expiry.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config
	done   chan struct{}
	once   sync.Once
}

// New creates a new cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	c := &Cache{
		items:  make(map[string]item),
		config: config,
		done:   make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Set stores a value with the default TTL.
func (c *Cache) Set(_ context.Context, key string, value any) {
	c.SetWithTTL(context.Background(), key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOldestLocked()
		}
	}

	c.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get retrieves a value. Expired entries count as missing.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.Delete(context.Background(), key)
		return nil, false
	}
	return it.value, true
}

// Delete removes a value from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if ok && c.config.OnEviction != nil {
		c.config.OnEviction(key, it.value)
	}
}

// Clear removes all values from the cache.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// evictOldestLocked removes the entry closest to expiry. Callers hold the lock.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, it := range c.items {
		if oldestKey == "" || it.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = it.expiresAt
		}
	}
	if oldestKey != "" {
		it := c.items[oldestKey]
		delete(c.items, oldestKey)
		if c.config.OnEviction != nil {
			c.config.OnEviction(oldestKey, it.value)
		}
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()

	c.mu.Lock()
	var expired []string
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			expired = append(expired, key)
		}
	}
	evicted := make(map[string]any, len(expired))
	for _, key := range expired {
		evicted[key] = c.items[key].value
		delete(c.items, key)
	}
	c.mu.Unlock()

	if c.config.OnEviction != nil {
		for key, value := range evicted {
			c.config.OnEviction(key, value)
		}
	}
}
