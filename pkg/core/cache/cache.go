// Package cache provides a thread-safe cache keyed by document
// identity and content revision. A lookup hits only when the revision
// matches exactly; any mismatch means the caller must recompute, and
// a Put for the same identity replaces the previous revision.
package cache

import (
	"sync"
)

// Entry is one cached result for a document revision.
type Entry struct {
	Value    interface{}
	Revision int64
}

// Cache is a revision-keyed in-memory cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Entry

	// Metrics
	hits   int64
	misses int64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		items: make(map[string]*Entry),
	}
}

// Get retrieves the value cached for an identity, but only when the
// cached revision equals the requested one.
func (c *Cache) Get(id string, revision int64) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.items[id]
	c.mu.RUnlock()

	if !exists || entry.Revision != revision {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.Value, true
}

// Put stores a value for an identity at a revision, replacing any
// earlier revision of the same identity.
func (c *Cache) Put(id string, revision int64, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[id] = &Entry{
		Value:    value,
		Revision: revision,
	}
}

// GetOrCompute returns the cached value for (id, revision) or computes,
// stores, and returns it.
func (c *Cache) GetOrCompute(id string, revision int64, fn func() (interface{}, error)) (interface{}, error) {
	if val, ok := c.Get(id, revision); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return nil, err
	}

	c.Put(id, revision, val)
	return val, nil
}

// Invalidate removes an identity from the cache.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// Flush removes all entries.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry)
}

// Size returns the number of cached identities.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses int64, hitRate float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hits = c.hits
	misses = c.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}
