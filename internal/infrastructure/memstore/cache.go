package memstore

import (
	"sync"
	"time"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

// CacheTTL is how long a cached analytics payload stays fresh.
const CacheTTL = 30 * time.Minute

type cacheEntry struct {
	payload   domain.ArticleAnalytics
	timestamp time.Time
}

// AnalyticsCache maps article ids to their most recent analytics payload.
// Expiry happens on read; there is no background eviction. Growth is
// bounded because article and domain deletion paths invalidate their keys.
type AnalyticsCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ ports.AnalyticsCache = (*AnalyticsCache)(nil)

// NewAnalyticsCache builds a cache with the standard 30-minute TTL.
func NewAnalyticsCache() *AnalyticsCache {
	return &AnalyticsCache{
		entries: map[string]cacheEntry{},
		ttl:     CacheTTL,
		now:     time.Now,
	}
}

// Get returns the cached payload, reporting a miss when the entry is
// absent or its age reached the TTL.
func (c *AnalyticsCache) Get(articleID string) (domain.ArticleAnalytics, bool) {
	c.mu.RLock()
	entry, ok := c.entries[articleID]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.timestamp) >= c.ttl {
		return domain.ArticleAnalytics{}, false
	}
	return entry.payload, true
}

// Put stores the payload with the current timestamp, unconditionally
// overwriting any previous entry.
func (c *AnalyticsCache) Put(articleID string, payload domain.ArticleAnalytics) {
	c.mu.Lock()
	c.entries[articleID] = cacheEntry{payload: payload, timestamp: c.now()}
	c.mu.Unlock()
}

// Invalidate removes the entry for the article.
func (c *AnalyticsCache) Invalidate(articleID string) {
	c.mu.Lock()
	delete(c.entries, articleID)
	c.mu.Unlock()
}

// Len reports the number of live entries, stale ones included.
func (c *AnalyticsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
