package plausible

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

const (
	queryPath      = "/api/v2/query"
	realtimeWindow = 5 * time.Minute
	requestTimeout = 10 * time.Second
)

var (
	pageMetrics  = []string{"visitors", "pageviews"}
	totalMetrics = []string{"visitors", "pageviews", "bounce_rate", "visit_duration"}
)

// Client issues stats queries against a Plausible-compatible provider and
// normalizes the v2 response shape into flat metric maps.
type Client struct {
	baseURL string
	loc     *time.Location
	http    *http.Client
	now     func() time.Time
}

var _ ports.StatsProvider = (*Client)(nil)

// NewClient wires the provider base URL and the site's reporting timezone.
func NewClient(baseURL string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		loc:     loc,
		http:    &http.Client{Timeout: requestTimeout},
		now:     time.Now,
	}
}

type queryRequest struct {
	SiteID     string   `json:"site_id"`
	Metrics    []string `json:"metrics"`
	DateRange  any      `json:"date_range"`
	Dimensions []string `json:"dimensions,omitempty"`
	Filters    []any    `json:"filters,omitempty"`
}

type queryResult struct {
	Metrics    []float64 `json:"metrics"`
	Dimensions []string  `json:"dimensions"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

// FetchArticleAnalytics runs the three independent queries for one page:
// a 5-minute realtime window, the same-day hourly trend, and the same-day
// totals. PreviousPeriod mirrors the current totals; the comparison
// interface is preserved as-is (see DESIGN.md).
func (c *Client) FetchArticleAnalytics(ctx context.Context, apiKey, siteID, pageURL string) (domain.ArticleAnalytics, error) {
	pagePath := pathOf(pageURL)
	pageFilter := []any{"is", "event:page", []string{pagePath}}

	now := c.now().In(c.loc)
	realtimeRange := []string{
		now.Add(-realtimeWindow).Format("2006-01-02T15:04:05-07:00"),
		now.Format("2006-01-02T15:04:05-07:00"),
	}

	realtime, err := c.query(ctx, apiKey, queryRequest{
		SiteID:    siteID,
		Metrics:   pageMetrics,
		DateRange: realtimeRange,
		Filters:   []any{pageFilter},
	})
	if err != nil {
		return domain.ArticleAnalytics{}, fmt.Errorf("realtime query: %w", err)
	}

	trend, err := c.query(ctx, apiKey, queryRequest{
		SiteID:     siteID,
		Metrics:    pageMetrics,
		DateRange:  "day",
		Dimensions: []string{"time:hour"},
		Filters:    []any{pageFilter},
	})
	if err != nil {
		return domain.ArticleAnalytics{}, fmt.Errorf("trend query: %w", err)
	}

	today, err := c.query(ctx, apiKey, queryRequest{
		SiteID:    siteID,
		Metrics:   totalMetrics,
		DateRange: "day",
		Filters:   []any{pageFilter},
	})
	if err != nil {
		return domain.ArticleAnalytics{}, fmt.Errorf("totals query: %w", err)
	}

	totals := parseMetrics(firstResult(today), totalMetrics)

	return domain.ArticleAnalytics{
		Realtime:   parseMetrics(firstResult(realtime), pageMetrics),
		HourlyData: parseTrend(trend),
		Totals:     totals,
		PreviousPeriod: domain.Metrics{
			"visitors":  totals["visitors"],
			"pageviews": totals["pageviews"],
		},
	}, nil
}

func (c *Client) query(ctx context.Context, apiKey string, body queryRequest) (*queryResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.ProviderQueryError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &parsed, nil
}

func firstResult(resp *queryResponse) *queryResult {
	if resp == nil || len(resp.Results) == 0 {
		return nil
	}
	return &resp.Results[0]
}

// parseMetrics flattens a v2 result row, where metric values arrive as a
// positional array, into a name-to-value map. Missing metrics become 0.
func parseMetrics(result *queryResult, names []string) domain.Metrics {
	out := domain.Metrics{}
	for i, name := range names {
		if result != nil && i < len(result.Metrics) {
			out[name] = result.Metrics[i]
		} else {
			out[name] = 0
		}
	}
	return out
}

func parseTrend(resp *queryResponse) []domain.TrendPoint {
	if resp == nil {
		return []domain.TrendPoint{}
	}
	points := make([]domain.TrendPoint, 0, len(resp.Results))
	for _, row := range resp.Results {
		point := domain.TrendPoint{}
		if len(row.Dimensions) > 0 {
			point.Time = row.Dimensions[0]
		}
		if len(row.Metrics) > 0 {
			point.Visitors = row.Metrics[0]
		}
		if len(row.Metrics) > 1 {
			point.Pageviews = row.Metrics[1]
		}
		points = append(points, point)
	}
	return points
}

func pathOf(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Path == "" {
		if err != nil {
			return pageURL
		}
		return "/"
	}
	return parsed.Path
}
