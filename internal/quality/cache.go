package quality

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// cacheKeyPrefix namespaces assessment entries within the session cache.
const cacheKeyPrefix = "validation_"

// Cache stores serialized assessments for the lifetime of a session.
// Implementations do not need to survive process restarts; the
// assessor treats any entry that fails to deserialize as a miss.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) ([]byte, bool)

	// Put stores a value, overwriting any previous entry.
	Put(key string, value []byte)
}

// CacheKey derives the cache key for a draft. The hash is one-way and
// collision handling is deliberately absent: the cache is a
// same-session convenience, not a security boundary, and a collision
// merely replays an assessment.
func CacheKey(title, description string) string {
	sum := sha256.Sum256([]byte(title + "|" + description))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// MemoryCache is the in-process session cache. The mutex makes it safe
// for concurrent use even though the interactive flow is serial.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache creates an empty session cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]byte),
	}
}

// Get returns the stored value and whether the key was present.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.entries[key]
	return value, ok
}

// Put stores a value, overwriting any previous entry.
func (c *MemoryCache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
