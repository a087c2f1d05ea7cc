// Package cache holds a small TTL cache for document reads.
//
// The cache is an optimization owned by the server layer, passed into
// whatever needs it; pipeline correctness never depends on a hit. Entries
// are keyed by user and document id so one user's documents are never
// served to another.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/casepipe/internal/repository"
)

// DefaultTTL bounds how stale a cached read may be.
const DefaultTTL = 30 * time.Second

type entry struct {
	value     []repository.Document
	expiresAt time.Time
}

// DocumentCache caches per-user document version lists.
type DocumentCache struct {
	mu    sync.Mutex
	store map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewDocumentCache(ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DocumentCache{
		store: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func key(userID string, id uuid.UUID) string {
	return userID + ":" + id.String()
}

func (c *DocumentCache) Get(userID string, id uuid.UUID) ([]repository.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store[key(userID, id)]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.store, key(userID, id))
		return nil, false
	}
	return e.value, true
}

func (c *DocumentCache) Set(userID string, id uuid.UUID, value []repository.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key(userID, id)] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete invalidates one entry, typically after a new version is saved.
func (c *DocumentCache) Delete(userID string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key(userID, id))
}
