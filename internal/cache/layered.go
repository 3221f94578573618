package cache

import "time"

// LayeredCache combines the memory and disk caches: reads check memory
// first and promote disk hits, writes go to both.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves document bytes, checking memory first, then disk
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		// Promote to memory with the default TTL
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores document bytes in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
