package cache

import (
	"sync"
	"time"

	"github.com/pricekit/localprice/pkg/domain"
)

type rateEntry struct {
	rec       *domain.RateRecord
	expiresAt time.Time
}

// MemoryRateCache implements cache.RateCache with an in-process map.
// Entries are evicted lazily on Get and swept periodically.
type MemoryRateCache struct {
	entries map[string]*rateEntry
	mu      sync.RWMutex
	stop    chan struct{}
}

// NewMemoryRateCache creates a new in-memory rate cache and starts its
// sweep goroutine.
func NewMemoryRateCache() *MemoryRateCache {
	c := &MemoryRateCache{
		entries: make(map[string]*rateEntry),
		stop:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get retrieves an unexpired record, or (nil, nil) on a miss.
func (c *MemoryRateCache) Get(key string) (*domain.RateRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.rec, nil
}

// Set stores a record with the given TTL.
func (c *MemoryRateCache) Set(key string, rec *domain.RateRecord, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &rateEntry{
		rec:       rec,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a record.
func (c *MemoryRateCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close stops the sweep goroutine.
func (c *MemoryRateCache) Close() {
	close(c.stop)
}

// sweep removes expired entries so abandoned pairs don't accumulate.
func (c *MemoryRateCache) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
