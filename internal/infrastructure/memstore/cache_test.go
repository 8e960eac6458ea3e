package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpulse/internal/domain"
)

func TestAnalyticsCacheTTL(t *testing.T) {
	t.Parallel()

	current := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	cache := NewAnalyticsCache()
	cache.now = func() time.Time { return current }

	payload := domain.ArticleAnalytics{
		Totals:        domain.Metrics{"visitors": 42, "pageviews": 80},
		PercentChange: 100,
	}
	cache.Put("a1", payload)

	got, hit := cache.Get("a1")
	require.True(t, hit)
	assert.Equal(t, payload, got)

	// One second before the TTL boundary the entry is still fresh.
	current = current.Add(CacheTTL - time.Second)
	_, hit = cache.Get("a1")
	assert.True(t, hit)

	// At exactly the TTL the entry expires.
	current = current.Add(time.Second)
	_, hit = cache.Get("a1")
	assert.False(t, hit)
}

func TestAnalyticsCacheMissAndInvalidate(t *testing.T) {
	t.Parallel()

	cache := NewAnalyticsCache()

	_, hit := cache.Get("absent")
	assert.False(t, hit)

	cache.Put("a1", domain.ArticleAnalytics{Totals: domain.Metrics{"visitors": 1}})
	cache.Invalidate("a1")

	_, hit = cache.Get("a1")
	assert.False(t, hit)
	assert.Equal(t, 0, cache.Len())
}

func TestAnalyticsCachePutOverwrites(t *testing.T) {
	t.Parallel()

	cache := NewAnalyticsCache()
	cache.Put("a1", domain.ArticleAnalytics{PercentChange: 1})
	cache.Put("a1", domain.ArticleAnalytics{PercentChange: 2})

	got, hit := cache.Get("a1")
	require.True(t, hit)
	assert.Equal(t, 2, got.PercentChange)
}
