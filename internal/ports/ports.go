package ports

import (
	"context"
	"time"

	"contentpulse/internal/domain"
)

// DomainRepository holds the registered websites.
type DomainRepository interface {
	Create(name, url string) domain.Domain
	Get(id string) (domain.Domain, bool)
	List() []domain.Domain
	Delete(id string) bool
	AdjustURLCount(id string, delta int)
}

// TrackedRef identifies one tracked article inside a session without
// leaking a live pointer out of the store.
type TrackedRef struct {
	DomainID  string
	Date      string
	ArticleID string
	URL       string
}

// SessionRepository is the per-(domainId, date) working-set store. Creation
// is atomic per key; Mutate runs its callback under the store lock so
// scheduler and request paths cannot interleave writes. Callbacks must not
// perform network I/O.
type SessionRepository interface {
	GetOrCreate(domainID, date string) domain.Session
	Mutate(domainID, date string, fn func(*domain.Session) error) error
	List(domainID string) []domain.SessionSummary
	TrackedArticles(domainID string) []domain.Article
	TrackedRefs() []TrackedRef
	DeleteByDomain(domainID string) []string
}

// AnalyticsCache maps article identifiers to their most recent analytics
// payload, expiring entries on read after the TTL.
type AnalyticsCache interface {
	Get(articleID string) (domain.ArticleAnalytics, bool)
	Put(articleID string, payload domain.ArticleAnalytics)
	Invalidate(articleID string)
}

// StatsProvider issues the realtime/trend/totals queries against the
// external analytics service for one page URL.
type StatsProvider interface {
	FetchArticleAnalytics(ctx context.Context, apiKey, siteID, pageURL string) (domain.ArticleAnalytics, error)
}

// CredentialStore exposes the mutable analytics API key.
type CredentialStore interface {
	APIKey() string
	SetAPIKey(key string)
}

// MetadataFetcher harvests OpenGraph title and image for a page, best
// effort: an error means the article is stored without metadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) (domain.PageMetadata, error)
}

// IndexChecker probes the search index for a URL. Advisory only; it never
// blocks other operations.
type IndexChecker interface {
	Check(ctx context.Context, pageURL string) (domain.IndexStatus, error)
}

// SnapshotArchive persists captured hourly snapshots outside the volatile
// store. Optional; a nil archive disables it.
type SnapshotArchive interface {
	Save(ctx context.Context, domainID, articleID string, snap domain.HourlySnapshot) error
}

// Notifier delivers advisory messages to the editorial team.
type Notifier interface {
	PublishAlert(ctx context.Context, message string) error
}

// Scheduler controls when background cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
