package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching loaded document bytes
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a document reference (path or URL)
func Key(ref string) string {
	hash := sha256.Sum256([]byte(ref))
	return "claimcheck:v1:" + hex.EncodeToString(hash[:])
}

// Digest returns the hex SHA-256 digest of document bytes, used to
// identify documents in reports
func Digest(b []byte) string {
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}
