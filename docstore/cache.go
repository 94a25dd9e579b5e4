package docstore

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	docs    []Document
	fetched time.Time
}

// snapshotCache keeps the latest snapshot of each collection with a TTL.
// Writes invalidate the affected collection so the next read reloads it.
type snapshotCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	store   *Store
}

func newSnapshotCache(s *Store, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		store:   s,
	}
}

func (c *snapshotCache) valid(collection string) (cacheEntry, bool) {
	e, ok := c.entries[collection]
	return e, ok && time.Since(e.fetched) < c.ttl
}

// Invalidate drops the cached snapshot of collection.
func (c *snapshotCache) Invalidate(collection string) {
	c.mu.Lock()
	delete(c.entries, collection)
	c.mu.Unlock()
}

// Snapshot returns the cached snapshot of collection, reloading it from the
// store when missing or stale. It tries a read lock first and only takes the
// write lock when a reload is needed.
func (c *snapshotCache) Snapshot(ctx context.Context, collection string) ([]Document, error) {
	c.mu.RLock()
	if e, ok := c.valid(collection); ok {
		c.mu.RUnlock()
		return e.docs, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.valid(collection); ok {
		return e.docs, nil
	}
	docs, err := c.store.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	c.entries[collection] = cacheEntry{docs: docs, fetched: time.Now()}
	return docs, nil
}
