package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"contentpulse/internal/domain"
	"contentpulse/internal/infrastructure/memstore"
	"contentpulse/internal/ports"
)

// AnalyticsDeps wires the analytics core: provider, cache, stores and the
// optional snapshot archive.
type AnalyticsDeps struct {
	Domains  ports.DomainRepository
	Sessions ports.SessionRepository
	Cache    ports.AnalyticsCache
	Provider ports.StatsProvider
	Creds    ports.CredentialStore
	Archive  ports.SnapshotArchive
	Logger   *slog.Logger
}

// Analytics implements the consolidated read path plus the two background
// cycles: the half-hour cache refresh and the hourly snapshot capture.
type Analytics struct {
	domains  ports.DomainRepository
	sessions ports.SessionRepository
	cache    ports.AnalyticsCache
	provider ports.StatsProvider
	creds    ports.CredentialStore
	archive  ports.SnapshotArchive
	logger   *slog.Logger
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewAnalytics constructs the analytics use case.
func NewAnalytics(deps AnalyticsDeps) *Analytics {
	return &Analytics{
		domains:  deps.Domains,
		sessions: deps.Sessions,
		cache:    deps.Cache,
		provider: deps.Provider,
		creds:    deps.Creds,
		archive:  deps.Archive,
		logger:   deps.Logger,
		limiter:  rate.NewLimiter(rate.Every(batchDelay), 1),
		now:      time.Now,
	}
}

// DomainAnalytics serves the consolidated view for a domain's tracked
// articles. Cache hits are returned as-is unless force is set, which
// invalidates first. A failed fetch yields a per-article error marker and
// is never cached, so the next read retries instead of serving poison.
func (a *Analytics) DomainAnalytics(ctx context.Context, domainID string, force bool) (map[string]domain.AnalyticsResult, domain.CacheInfo, error) {
	d, ok := a.domains.Get(domainID)
	if !ok {
		return nil, domain.CacheInfo{}, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	apiKey := a.creds.APIKey()
	if apiKey == "" {
		return nil, domain.CacheInfo{}, domain.ErrCredentialMissing
	}

	siteID := d.SiteID()
	tracked := a.sessions.TrackedArticles(domainID)

	if force {
		for _, article := range tracked {
			a.cache.Invalidate(article.ID)
		}
		a.info("force refreshing analytics", "domain", domainID, "tracked", len(tracked))
	}

	results := map[string]domain.AnalyticsResult{}
	for _, article := range tracked {
		if !force {
			if cached, hit := a.cache.Get(article.ID); hit {
				payload := cached
				results[article.ID] = domain.AnalyticsResult{ArticleAnalytics: &payload}
				continue
			}
		}

		payload, err := a.fetchProcessed(ctx, apiKey, siteID, article.URL)
		if err != nil {
			a.warn("fetch analytics", "article", article.Label, "error", err)
			results[article.ID] = domain.AnalyticsResult{Error: err.Error()}
			continue
		}

		a.cache.Put(article.ID, payload)
		stored := payload
		results[article.ID] = domain.AnalyticsResult{ArticleAnalytics: &stored}
	}

	info := domain.CacheInfo{
		TTLMinutes:  int(memstore.CacheTTL / time.Minute),
		NextRefresh: a.now().Add(memstore.CacheTTL),
	}
	return results, info, nil
}

// RefreshDomain is the manual refresh: every tracked article's cache entry
// is invalidated, then refetched fresh. Partial results on failure.
func (a *Analytics) RefreshDomain(ctx context.Context, domainID string) (map[string]domain.AnalyticsResult, error) {
	d, ok := a.domains.Get(domainID)
	if !ok {
		return nil, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	apiKey := a.creds.APIKey()
	if apiKey == "" {
		return nil, domain.ErrCredentialMissing
	}

	siteID := d.SiteID()
	tracked := a.sessions.TrackedArticles(domainID)
	for _, article := range tracked {
		a.cache.Invalidate(article.ID)
	}

	results := map[string]domain.AnalyticsResult{}
	for _, article := range tracked {
		payload, err := a.fetchProcessed(ctx, apiKey, siteID, article.URL)
		if err != nil {
			a.warn("refresh analytics", "article", article.Label, "error", err)
			results[article.ID] = domain.AnalyticsResult{Error: err.Error()}
			continue
		}

		a.cache.Put(article.ID, payload)
		stored := payload
		results[article.ID] = domain.AnalyticsResult{ArticleAnalytics: &stored}
	}
	return results, nil
}

// RefreshAll is the half-hour cycle: repopulate the cache for every
// tracked article across all domains. Per-article failures are logged and
// skipped; without a credential the whole cycle is a no-op.
func (a *Analytics) RefreshAll(ctx context.Context) {
	apiKey := a.creds.APIKey()
	if apiKey == "" {
		a.info("no analytics API key configured, skipping refresh")
		return
	}

	a.info("refreshing analytics for all tracked articles")

	for _, d := range a.domains.List() {
		siteID := d.SiteID()
		for _, article := range a.sessions.TrackedArticles(d.ID) {
			if err := a.limiter.Wait(ctx); err != nil {
				return
			}

			payload, err := a.fetchProcessed(ctx, apiKey, siteID, article.URL)
			if err != nil {
				a.warn("refresh failed", "article", article.Label, "error", err)
				continue
			}
			a.cache.Put(article.ID, payload)
		}
	}

	a.info("analytics refresh complete")
}

// CaptureSnapshots is the hourly cycle: sample the current visitor total
// for every tracked article in every session, append the delta snapshot to
// its rolling history, and archive it when a durable backend is wired.
// Fetches happen outside the store lock; the append happens under it.
func (a *Analytics) CaptureSnapshots(ctx context.Context) {
	apiKey := a.creds.APIKey()
	if apiKey == "" {
		a.info("no analytics API key configured, skipping snapshots")
		return
	}

	hour := a.now().UTC().Format("2006-01-02T15") + ":00"
	a.info("capturing hourly snapshots", "hour", hour)

	for _, ref := range a.sessions.TrackedRefs() {
		d, ok := a.domains.Get(ref.DomainID)
		if !ok {
			continue
		}

		if err := a.limiter.Wait(ctx); err != nil {
			return
		}

		payload, err := a.provider.FetchArticleAnalytics(ctx, apiKey, d.SiteID(), ref.URL)
		if err != nil {
			a.warn("snapshot fetch failed", "url", ref.URL, "error", err)
			continue
		}
		visitors := payload.Totals.Visitors()

		var snap domain.HourlySnapshot
		err = a.sessions.Mutate(ref.DomainID, ref.Date, func(s *domain.Session) error {
			article := s.FindArticle(ref.ArticleID)
			if article == nil {
				return fmt.Errorf("article %s: %w", ref.ArticleID, domain.ErrNotFound)
			}
			snap = article.RecordSnapshot(hour, visitors)
			return nil
		})
		if err != nil {
			a.warn("snapshot store failed", "article", ref.ArticleID, "error", err)
			continue
		}

		if a.archive != nil {
			if err := a.archive.Save(ctx, ref.DomainID, ref.ArticleID, snap); err != nil {
				a.warn("snapshot archive failed", "article", ref.ArticleID, "error", err)
			}
		}
	}

	a.info("hourly snapshots complete")
}

func (a *Analytics) fetchProcessed(ctx context.Context, apiKey, siteID, pageURL string) (domain.ArticleAnalytics, error) {
	payload, err := a.provider.FetchArticleAnalytics(ctx, apiKey, siteID, pageURL)
	if err != nil {
		return domain.ArticleAnalytics{}, err
	}

	payload.PercentChange = domain.PercentChange(
		payload.Totals.Visitors(),
		payload.PreviousPeriod.Visitors(),
	)
	payload.LastUpdated = a.now()
	return payload, nil
}

func (a *Analytics) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Analytics) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
