package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"contentpulse/internal/domain"
	"contentpulse/internal/infrastructure/memstore"
)

type fakeMetadata struct {
	meta domain.PageMetadata
	err  error
}

func (f *fakeMetadata) Fetch(_ context.Context, _ string) (domain.PageMetadata, error) {
	return f.meta, f.err
}

type fakeIndexer struct {
	status domain.IndexStatus
	err    error
	calls  int
}

func (f *fakeIndexer) Check(_ context.Context, _ string) (domain.IndexStatus, error) {
	f.calls++
	return f.status, f.err
}

type contentFixture struct {
	domains  *memstore.DomainStore
	sessions *memstore.SessionStore
	cache    *memstore.AnalyticsCache
	metadata *fakeMetadata
	indexer  *fakeIndexer
	svc      *Content
	domainID string
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	f := &contentFixture{
		domains:  memstore.NewDomainStore(),
		sessions: memstore.NewSessionStore(),
		cache:    memstore.NewAnalyticsCache(),
		metadata: &fakeMetadata{},
		indexer:  &fakeIndexer{status: domain.IndexIndexed},
	}

	f.svc = NewContent(ContentDeps{
		Domains:  f.domains,
		Sessions: f.sessions,
		Cache:    f.cache,
		Metadata: f.metadata,
		Indexer:  f.indexer,
	})
	f.svc.limiter = rate.NewLimiter(rate.Inf, 1)
	f.svc.now = func() time.Time {
		return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	}

	d, err := f.svc.CreateDomain("News Site", "https://www.example.com")
	require.NoError(t, err)
	f.domainID = d.ID
	return f
}

func (f *contentFixture) addArticle(t *testing.T, url string) domain.Article {
	t.Helper()
	article, err := f.svc.AddArticle(context.Background(), f.domainID, "", url, "")
	require.NoError(t, err)
	return article
}

func TestCreateDomainValidation(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	_, err := f.svc.CreateDomain("", "https://example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.CreateDomain("Name", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddArticleHarvestsMetadata(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	f.metadata.meta = domain.PageMetadata{Title: "Breaking Story", Image: "https://cdn.example.com/img.jpg"}

	article := f.addArticle(t, "https://example.com/story")
	assert.Equal(t, "Breaking Story", article.Label, "metadata title fills a missing label")
	assert.Equal(t, "Breaking Story", article.Title)
	assert.Equal(t, "https://cdn.example.com/img.jpg", article.FeaturedImage)
	assert.Equal(t, domain.IndexUnchecked, article.IndexStatus)

	d, err := f.svc.GetDomain(f.domainID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.URLCount)
}

func TestAddArticleMetadataFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	f.metadata.err = context.DeadlineExceeded

	article := f.addArticle(t, "https://example.com/story")
	assert.Equal(t, "https://example.com/story", article.Label, "falls back to the URL")
	assert.Empty(t, article.FeaturedImage)
}

func TestDeleteDomainCascades(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	a1 := f.addArticle(t, "https://example.com/one")
	a2 := f.addArticle(t, "https://example.com/two")
	f.cache.Put(a1.ID, domain.ArticleAnalytics{Totals: domain.Metrics{"visitors": 1}})
	f.cache.Put(a2.ID, domain.ArticleAnalytics{Totals: domain.Metrics{"visitors": 2}})

	require.NoError(t, f.svc.DeleteDomain(f.domainID))

	_, err := f.svc.GetDomain(f.domainID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.sessions.List(f.domainID))

	_, hit := f.cache.Get(a1.ID)
	assert.False(t, hit)
	_, hit = f.cache.Get(a2.ID)
	assert.False(t, hit)
}

func TestDeleteArticleCleansUp(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	article := f.addArticle(t, "https://example.com/one")
	f.cache.Put(article.ID, domain.ArticleAnalytics{})

	group, err := f.svc.CreateFocusGroup(f.domainID, "", "", "")
	require.NoError(t, err)
	_, err = f.svc.AssignArticles(f.domainID, "", group.ID, []string{article.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteArticle(f.domainID, "", article.ID))

	session, err := f.svc.Session(f.domainID, "")
	require.NoError(t, err)
	assert.Empty(t, session.Articles)
	assert.Empty(t, session.FocusGroups[0].ArticleIDs, "membership reference is dropped")

	_, hit := f.cache.Get(article.ID)
	assert.False(t, hit)

	d, _ := f.svc.GetDomain(f.domainID)
	assert.Equal(t, 0, d.URLCount)
}

func TestAssignArticlesForcesTracking(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	article := f.addArticle(t, "https://example.com/one")
	assert.False(t, article.IsTracking)

	group, err := f.svc.CreateFocusGroup(f.domainID, "", "Morning Batch", "08:30")
	require.NoError(t, err)

	updated, err := f.svc.AssignArticles(f.domainID, "", group.ID, []string{article.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{article.ID}, updated.ArticleIDs, "unknown ids are skipped")

	detail, err := f.svc.ArticleDetail(f.domainID, "", article.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsTracking)
	assert.Equal(t, group.ID, detail.FocusGroupID)
	require.NotNil(t, detail.FocusStartedAt)
	require.NotNil(t, detail.FocusGroup)
	assert.Equal(t, "Morning Batch", detail.FocusGroup.Name)

	// Re-assigning is idempotent.
	updated, err = f.svc.AssignArticles(f.domainID, "", group.ID, []string{article.ID})
	require.NoError(t, err)
	assert.Len(t, updated.ArticleIDs, 1)
}

func TestSetArticleFlagsKeepsFocusGroup(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	article := f.addArticle(t, "https://example.com/one")

	group, err := f.svc.CreateFocusGroup(f.domainID, "", "", "")
	require.NoError(t, err)
	_, err = f.svc.AssignArticles(f.domainID, "", group.ID, []string{article.ID})
	require.NoError(t, err)

	off := false
	updated, err := f.svc.SetArticleFlags(f.domainID, "", article.ID, &off, "")
	require.NoError(t, err)

	assert.False(t, updated.IsTracking)
	assert.Equal(t, group.ID, updated.FocusGroupID, "tracking and membership are decoupled")
}

func TestFocusGroupDefaultsAndColorRotation(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)

	first, err := f.svc.CreateFocusGroup(f.domainID, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Focus Set 1", first.Name)
	assert.Equal(t, "09:00", first.StartTime, "start time defaults to now")
	assert.Equal(t, domain.FocusColors[0], first.Color)

	second, err := f.svc.CreateFocusGroup(f.domainID, "", "Named", "10:15")
	require.NoError(t, err)
	assert.Equal(t, "Named", second.Name)
	assert.Equal(t, "10:15", second.StartTime)
	assert.Equal(t, domain.FocusColors[1], second.Color)
}

func TestMarkPushGivenStampsArticles(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	a1 := f.addArticle(t, "https://example.com/one")
	a2 := f.addArticle(t, "https://example.com/two")

	group, err := f.svc.CreateFocusGroup(f.domainID, "", "", "")
	require.NoError(t, err)
	_, err = f.svc.AssignArticles(f.domainID, "", group.ID, []string{a1.ID, a2.ID})
	require.NoError(t, err)

	at := time.Date(2024, time.March, 15, 11, 30, 0, 0, time.UTC)
	updated, err := f.svc.MarkPushGiven(f.domainID, "", group.ID, nil, &at)
	require.NoError(t, err)

	assert.True(t, updated.PushStatus.Given)
	require.NotNil(t, updated.PushStatus.GivenAt)
	assert.Equal(t, at, *updated.PushStatus.GivenAt)
	assert.False(t, updated.PushStatus.Due, "a given push is no longer due")

	for _, id := range []string{a1.ID, a2.ID} {
		detail, err := f.svc.ArticleDetail(f.domainID, "", id)
		require.NoError(t, err)
		require.NotNil(t, detail.PushGivenAt)
		assert.Equal(t, at, *detail.PushGivenAt)
	}
}

func TestTrackingFiltersByFocusGroup(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	a1 := f.addArticle(t, "https://example.com/one")
	a2 := f.addArticle(t, "https://example.com/two")
	f.addArticle(t, "https://example.com/untracked")

	group, err := f.svc.CreateFocusGroup(f.domainID, "", "", "")
	require.NoError(t, err)
	_, err = f.svc.AssignArticles(f.domainID, "", group.ID, []string{a1.ID})
	require.NoError(t, err)

	on := true
	_, err = f.svc.SetArticleFlags(f.domainID, "", a2.ID, &on, "")
	require.NoError(t, err)

	view, err := f.svc.Tracking(f.domainID, "", "")
	require.NoError(t, err)
	assert.Len(t, view.Articles, 2)
	assert.Nil(t, view.FocusGroup)

	view, err = f.svc.Tracking(f.domainID, "", group.ID)
	require.NoError(t, err)
	require.Len(t, view.Articles, 1)
	assert.Equal(t, a1.ID, view.Articles[0].ID)
	require.NotNil(t, view.FocusGroup)
	assert.Equal(t, group.ID, view.FocusGroup.ID)
}

func TestCheckIndexRecordsProbeResult(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	article := f.addArticle(t, "https://example.com/one")

	updated, err := f.svc.CheckIndex(context.Background(), f.domainID, "", article.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexIndexed, updated.IndexStatus)
	assert.Equal(t, 1, f.indexer.calls)
}

func TestCheckIndexProbeFailureYieldsUnknown(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	f.indexer.status = domain.IndexUnknown
	f.indexer.err = context.DeadlineExceeded
	article := f.addArticle(t, "https://example.com/one")

	updated, err := f.svc.CheckIndex(context.Background(), f.domainID, "", article.ID)
	require.NoError(t, err, "probe failures are not operation failures")
	assert.Equal(t, domain.IndexUnknown, updated.IndexStatus)
}

func TestCheckAllIndexCoversSession(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	a1 := f.addArticle(t, "https://example.com/one")
	a2 := f.addArticle(t, "https://example.com/two")

	results, err := f.svc.CheckAllIndex(context.Background(), f.domainID, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, a1.ID, results[0].ID)
	assert.Equal(t, a2.ID, results[1].ID)
	for _, r := range results {
		assert.Equal(t, domain.IndexIndexed, r.IndexStatus)
	}
	assert.Equal(t, 2, f.indexer.calls)
}

func TestSessionDefaultsToToday(t *testing.T) {
	t.Parallel()

	f := newContentFixture(t)
	session, err := f.svc.Session(f.domainID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", session.Date)

	_, err = f.svc.Session("missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
