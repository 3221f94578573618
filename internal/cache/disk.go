package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache implements persistent disk-based caching. Documents can be
// large, so entries live one-per-file under the cache directory.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a new disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves document bytes from the disk cache. Expired entries are
// removed on read.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry; drop it
		_ = os.Remove(path)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores document bytes in the disk cache
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	entry := diskEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes all cached files
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".cache")
}
