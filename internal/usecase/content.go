package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

// batchDelay spaces sequential external calls inside "check all" style
// operations to respect third-party rate limits.
const batchDelay = 500 * time.Millisecond

// ContentDeps wires the driven adapters into the editorial workflow.
type ContentDeps struct {
	Domains  ports.DomainRepository
	Sessions ports.SessionRepository
	Cache    ports.AnalyticsCache
	Metadata ports.MetadataFetcher
	Indexer  ports.IndexChecker
	Logger   *slog.Logger
}

// Content implements the record-keeping operations: domains, daily
// sessions, articles and focus groups.
type Content struct {
	domains  ports.DomainRepository
	sessions ports.SessionRepository
	cache    ports.AnalyticsCache
	metadata ports.MetadataFetcher
	indexer  ports.IndexChecker
	logger   *slog.Logger
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewContent constructs the editorial use case.
func NewContent(deps ContentDeps) *Content {
	return &Content{
		domains:  deps.Domains,
		sessions: deps.Sessions,
		cache:    deps.Cache,
		metadata: deps.Metadata,
		indexer:  deps.Indexer,
		logger:   deps.Logger,
		limiter:  rate.NewLimiter(rate.Every(batchDelay), 1),
		now:      time.Now,
	}
}

// ArticleDetail is an article plus its denormalized focus-group summary.
type ArticleDetail struct {
	domain.Article
	FocusGroup *domain.FocusGroupSummary `json:"focusGroup"`
}

// TrackingView groups tracked articles, optionally filtered to one focus
// group.
type TrackingView struct {
	FocusGroup *domain.FocusGroup `json:"focusGroup"`
	Articles   []domain.Article   `json:"articles"`
}

// IndexCheckResult is one row of a batch index check.
type IndexCheckResult struct {
	ID          string             `json:"id"`
	IndexStatus domain.IndexStatus `json:"indexStatus"`
}

// CreateDomain registers a website.
func (c *Content) CreateDomain(name, url string) (domain.Domain, error) {
	if name == "" || url == "" {
		return domain.Domain{}, fmt.Errorf("name and url are required: %w", domain.ErrValidation)
	}
	return c.domains.Create(name, url), nil
}

// GetDomain fetches one website.
func (c *Content) GetDomain(id string) (domain.Domain, error) {
	d, ok := c.domains.Get(id)
	if !ok {
		return domain.Domain{}, fmt.Errorf("domain %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

// ListDomains returns all registered websites.
func (c *Content) ListDomains() []domain.Domain {
	return c.domains.List()
}

// DeleteDomain removes a website and cascades through its sessions and
// cached analytics so no dangling cache keys survive.
func (c *Content) DeleteDomain(id string) error {
	if _, ok := c.domains.Get(id); !ok {
		return fmt.Errorf("domain %s: %w", id, domain.ErrNotFound)
	}

	for _, articleID := range c.sessions.DeleteByDomain(id) {
		c.cache.Invalidate(articleID)
	}
	c.domains.Delete(id)
	return nil
}

// Session returns (creating if needed) the working set for the date; an
// empty date means today.
func (c *Content) Session(domainID, date string) (domain.Session, error) {
	if _, ok := c.domains.Get(domainID); !ok {
		return domain.Session{}, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}
	return c.sessions.GetOrCreate(domainID, c.dateOrToday(date)), nil
}

// ListSessions returns session summaries sorted by date descending.
func (c *Content) ListSessions(domainID string) ([]domain.SessionSummary, error) {
	if _, ok := c.domains.Get(domainID); !ok {
		return nil, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}
	return c.sessions.List(domainID), nil
}

// AddArticle logs a URL into the session, harvesting page metadata best
// effort before touching the store.
func (c *Content) AddArticle(ctx context.Context, domainID, date, pageURL, label string) (domain.Article, error) {
	if pageURL == "" {
		return domain.Article{}, fmt.Errorf("url is required: %w", domain.ErrValidation)
	}
	if _, ok := c.domains.Get(domainID); !ok {
		return domain.Article{}, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	var meta domain.PageMetadata
	if c.metadata != nil {
		fetched, err := c.metadata.Fetch(ctx, pageURL)
		if err != nil {
			c.warn("fetch page metadata", "url", pageURL, "error", err)
		} else {
			meta = fetched
		}
	}

	article := domain.Article{
		ID:              uuid.New().String(),
		URL:             pageURL,
		Label:           firstNonEmpty(label, meta.Title, pageURL),
		Title:           firstNonEmpty(meta.Title, label, pageURL),
		FeaturedImage:   meta.Image,
		IndexStatus:     domain.IndexUnchecked,
		AddedAt:         c.now(),
		HourlySnapshots: []domain.HourlySnapshot{},
	}

	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		s.Articles = append(s.Articles, article)
		return nil
	})
	if err != nil {
		return domain.Article{}, err
	}

	c.domains.AdjustURLCount(domainID, 1)
	return article, nil
}

// ArticleDetail returns the article with its focus-group summary.
func (c *Content) ArticleDetail(domainID, date, articleID string) (ArticleDetail, error) {
	var detail ArticleDetail
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		article := s.FindArticle(articleID)
		if article == nil {
			return fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
		}
		detail.Article = article.Clone()
		if article.FocusGroupID != "" {
			if group := s.FindFocusGroup(article.FocusGroupID); group != nil {
				detail.FocusGroup = &domain.FocusGroupSummary{
					ID:    group.ID,
					Name:  group.Name,
					Color: group.Color,
				}
			}
		}
		return nil
	})
	return detail, err
}

// MarkIndexed records that the article reached the search index.
func (c *Content) MarkIndexed(domainID, date, articleID string) (domain.Article, error) {
	return c.updateArticle(domainID, date, articleID, func(a *domain.Article) {
		now := c.now()
		a.IndexStatus = domain.IndexIndexed
		a.IndexedAt = &now
	})
}

// SetArticleFlags toggles tracking and/or overrides the index status.
// Turning tracking off deliberately leaves FocusGroupID intact; the flags
// are decoupled.
func (c *Content) SetArticleFlags(domainID, date, articleID string, isTracking *bool, indexStatus domain.IndexStatus) (domain.Article, error) {
	return c.updateArticle(domainID, date, articleID, func(a *domain.Article) {
		if isTracking != nil {
			a.IsTracking = *isTracking
		}
		if indexStatus != "" {
			a.IndexStatus = indexStatus
		}
	})
}

// DeleteArticle removes the article from its session, drops its cache
// entry and detaches it from any focus group.
func (c *Content) DeleteArticle(domainID, date, articleID string) error {
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		for i := range s.Articles {
			if s.Articles[i].ID != articleID {
				continue
			}
			s.Articles = append(s.Articles[:i], s.Articles[i+1:]...)
			for g := range s.FocusGroups {
				s.FocusGroups[g].ArticleIDs = removeString(s.FocusGroups[g].ArticleIDs, articleID)
			}
			return nil
		}
		return fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
	})
	if err != nil {
		return err
	}

	c.cache.Invalidate(articleID)
	c.domains.AdjustURLCount(domainID, -1)
	return nil
}

// CreateFocusGroup opens a named, time-boxed bundle; colors rotate through
// the fixed palette by creation order within the session.
func (c *Content) CreateFocusGroup(domainID, date, name, startTime string) (domain.FocusGroup, error) {
	if _, ok := c.domains.Get(domainID); !ok {
		return domain.FocusGroup{}, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	var group domain.FocusGroup
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		group = domain.FocusGroup{
			ID:         uuid.New().String(),
			Name:       firstNonEmpty(name, fmt.Sprintf("Focus Set %d", len(s.FocusGroups)+1)),
			StartTime:  firstNonEmpty(startTime, c.now().Format("15:04")),
			Color:      domain.FocusColors[len(s.FocusGroups)%len(domain.FocusColors)],
			ArticleIDs: []string{},
			CreatedAt:  c.now(),
		}
		s.FocusGroups = append(s.FocusGroups, group)
		return nil
	})
	return group, err
}

// AssignArticles adds session articles to a focus group. Assignment forces
// tracking on and stamps the focus-start timestamp; both sides of the
// membership reference stay consistent.
func (c *Content) AssignArticles(domainID, date, groupID string, articleIDs []string) (domain.FocusGroup, error) {
	var updated domain.FocusGroup
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		group := s.FindFocusGroup(groupID)
		if group == nil {
			return fmt.Errorf("focus group %s: %w", groupID, domain.ErrNotFound)
		}

		for _, id := range articleIDs {
			article := s.FindArticle(id)
			if article == nil || group.Contains(id) {
				continue
			}
			group.ArticleIDs = append(group.ArticleIDs, id)
			article.FocusGroupID = groupID
			article.IsTracking = true
			started := c.now()
			article.FocusStartedAt = &started
		}

		updated = *group
		updated.ArticleIDs = append([]string(nil), group.ArticleIDs...)
		updated.PushStatus.Due = group.PushDue(c.now())
		return nil
	})
	return updated, err
}

// MarkPushGiven records the push notification for a focus group and stamps
// pushGivenAt on every member article.
func (c *Content) MarkPushGiven(domainID, date, groupID string, given *bool, givenAt *time.Time) (domain.FocusGroup, error) {
	var updated domain.FocusGroup
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		group := s.FindFocusGroup(groupID)
		if group == nil {
			return fmt.Errorf("focus group %s: %w", groupID, domain.ErrNotFound)
		}

		pushTime := c.now()
		if givenAt != nil {
			pushTime = *givenAt
		}
		group.PushStatus.Given = true
		if given != nil {
			group.PushStatus.Given = *given
		}
		group.PushStatus.GivenAt = &pushTime

		for _, id := range group.ArticleIDs {
			if article := s.FindArticle(id); article != nil {
				stamped := pushTime
				article.PushGivenAt = &stamped
			}
		}

		updated = *group
		updated.ArticleIDs = append([]string(nil), group.ArticleIDs...)
		updated.PushStatus.Due = group.PushDue(c.now())
		return nil
	})
	return updated, err
}

// Tracking returns the tracked articles of a session, optionally narrowed
// to one focus group, with their snapshot histories.
func (c *Content) Tracking(domainID, date, focusGroupID string) (TrackingView, error) {
	if _, ok := c.domains.Get(domainID); !ok {
		return TrackingView{}, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	session := c.sessions.GetOrCreate(domainID, c.dateOrToday(date))

	view := TrackingView{Articles: []domain.Article{}}
	if focusGroupID != "" {
		if group := session.FindFocusGroup(focusGroupID); group != nil {
			copied := *group
			view.FocusGroup = &copied
		}
	}

	for _, a := range session.Articles {
		if !a.IsTracking {
			continue
		}
		if focusGroupID != "" && a.FocusGroupID != focusGroupID {
			continue
		}
		view.Articles = append(view.Articles, a)
	}
	return view, nil
}

// CheckIndex probes the search index for one article. The status flips to
// "checking" while the probe runs; the store lock is never held across it.
func (c *Content) CheckIndex(ctx context.Context, domainID, date, articleID string) (domain.Article, error) {
	pageURL := ""
	_, err := c.updateArticle(domainID, date, articleID, func(a *domain.Article) {
		a.IndexStatus = domain.IndexChecking
		pageURL = a.URL
	})
	if err != nil {
		return domain.Article{}, err
	}

	status := c.probeIndex(ctx, pageURL)
	return c.updateArticle(domainID, date, articleID, func(a *domain.Article) {
		a.IndexStatus = status
	})
}

// CheckAllIndex probes every article in the session sequentially with a
// fixed delay between calls. Individual probe failures leave the article at
// "unknown" and never abort the batch.
func (c *Content) CheckAllIndex(ctx context.Context, domainID, date string) ([]IndexCheckResult, error) {
	if _, ok := c.domains.Get(domainID); !ok {
		return nil, fmt.Errorf("domain %s: %w", domainID, domain.ErrNotFound)
	}

	day := c.dateOrToday(date)
	type target struct{ id, url string }
	targets := []target{}

	err := c.sessions.Mutate(domainID, day, func(s *domain.Session) error {
		for i := range s.Articles {
			s.Articles[i].IndexStatus = domain.IndexChecking
			targets = append(targets, target{id: s.Articles[i].ID, url: s.Articles[i].URL})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := []IndexCheckResult{}
	for _, tgt := range targets {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, err
		}

		status := c.probeIndex(ctx, tgt.url)
		if _, err := c.updateArticle(domainID, day, tgt.id, func(a *domain.Article) {
			a.IndexStatus = status
		}); err != nil {
			continue
		}
		results = append(results, IndexCheckResult{ID: tgt.id, IndexStatus: status})
	}
	return results, nil
}

func (c *Content) probeIndex(ctx context.Context, pageURL string) domain.IndexStatus {
	if c.indexer == nil {
		return domain.IndexUnknown
	}
	status, err := c.indexer.Check(ctx, pageURL)
	if err != nil {
		c.warn("index check", "url", pageURL, "error", err)
		return domain.IndexUnknown
	}
	return status
}

func (c *Content) updateArticle(domainID, date, articleID string, apply func(*domain.Article)) (domain.Article, error) {
	var updated domain.Article
	err := c.sessions.Mutate(domainID, c.dateOrToday(date), func(s *domain.Session) error {
		article := s.FindArticle(articleID)
		if article == nil {
			return fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
		}
		apply(article)
		updated = article.Clone()
		return nil
	})
	return updated, err
}

func (c *Content) dateOrToday(date string) string {
	if date != "" {
		return date
	}
	return c.now().Format("2006-01-02")
}

func (c *Content) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
