package memstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpulse/internal/domain"
)

func TestGetOrCreateIdempotentUnderConcurrency(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.GetOrCreate("d1", "2024-01-01")
			err := store.Mutate("d1", "2024-01-01", func(s *domain.Session) error {
				s.Articles = append(s.Articles, domain.Article{ID: fmt.Sprintf("a%d", n)})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every writer landed in the same underlying session; nothing was
	// silently overwritten by a divergent copy.
	session := store.GetOrCreate("d1", "2024-01-01")
	assert.Len(t, session.Articles, writers)

	summaries := store.List("d1")
	require.Len(t, summaries, 1)
	assert.Equal(t, writers, summaries[0].ArticleCount)
}

func TestListSortedByDateDescending(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	for _, date := range []string{"2024-01-02", "2024-01-10", "2024-01-01"} {
		_ = store.GetOrCreate("d1", date)
	}
	_ = store.GetOrCreate("other", "2024-05-05")

	summaries := store.List("d1")
	require.Len(t, summaries, 3)
	assert.Equal(t, "2024-01-10", summaries[0].Date)
	assert.Equal(t, "2024-01-02", summaries[1].Date)
	assert.Equal(t, "2024-01-01", summaries[2].Date)
}

func TestTrackedArticlesDeduplicates(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()

	seed := func(date, id, url string, tracking bool) {
		err := store.Mutate("d1", date, func(s *domain.Session) error {
			s.Articles = append(s.Articles, domain.Article{ID: id, URL: url, IsTracking: tracking})
			return nil
		})
		require.NoError(t, err)
	}

	seed("2024-01-01", "a1", "https://ex.com/one", true)
	seed("2024-01-02", "a1", "https://ex.com/one", true)           // same id
	seed("2024-01-03", "a3", "https://ex.com/one", true)           // same url, new id
	seed("2024-01-04", "a4", "https://ex.com/four", false)         // untracked
	seed("2024-01-05", "a5", "https://ex.com/five", true)

	tracked := store.TrackedArticles("d1")
	require.Len(t, tracked, 2)
	assert.Equal(t, "a1", tracked[0].ID)
	assert.Equal(t, "a5", tracked[1].ID)
}

func TestTrackedRefsSpansDomains(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	for _, d := range []string{"d1", "d2"} {
		err := store.Mutate(d, "2024-01-01", func(s *domain.Session) error {
			s.Articles = append(s.Articles,
				domain.Article{ID: d + "-a", URL: "https://ex.com/" + d, IsTracking: true},
				domain.Article{ID: d + "-b", URL: "https://ex.com/b", IsTracking: false},
			)
			return nil
		})
		require.NoError(t, err)
	}

	refs := store.TrackedRefs()
	require.Len(t, refs, 2)
	assert.Equal(t, "d1", refs[0].DomainID)
	assert.Equal(t, "d1-a", refs[0].ArticleID)
	assert.Equal(t, "2024-01-01", refs[0].Date)
	assert.Equal(t, "d2-a", refs[1].ArticleID)
}

func TestDeleteByDomainReturnsArticleIDs(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	err := store.Mutate("d1", "2024-01-01", func(s *domain.Session) error {
		s.Articles = append(s.Articles, domain.Article{ID: "a1"}, domain.Article{ID: "a2"})
		return nil
	})
	require.NoError(t, err)
	_ = store.GetOrCreate("d2", "2024-01-01")

	removed := store.DeleteByDomain("d1")
	assert.ElementsMatch(t, []string{"a1", "a2"}, removed)
	assert.Empty(t, store.List("d1"))
	assert.Len(t, store.List("d2"), 1)
}

func TestGetOrCreateReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	first := store.GetOrCreate("d1", "2024-01-01")
	first.Articles = append(first.Articles, domain.Article{ID: "rogue"})

	second := store.GetOrCreate("d1", "2024-01-01")
	assert.Empty(t, second.Articles, "mutating a returned copy must not touch the store")
}
