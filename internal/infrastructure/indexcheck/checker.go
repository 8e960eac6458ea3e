package indexcheck

import (
	"context"
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
	searchEndpoint = "https://www.google.com/search"
	browserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Checker probes the search index with a site: query. Results are advisory;
// any transport or parse failure yields IndexUnknown.
type Checker struct {
	client   *http.Client
	endpoint string
}

var _ ports.IndexChecker = (*Checker)(nil)

// NewChecker wires an HTTP client; timeout defaults to 10s.
func NewChecker(client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Checker{client: client, endpoint: searchEndpoint}
}

// Check reports indexed, not-indexed or unknown for the page URL.
func (c *Checker) Check(ctx context.Context, pageURL string) (domain.IndexStatus, error) {
	query := url.Values{}
	query.Set("q", "site:"+pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return domain.IndexUnknown, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.IndexUnknown, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.IndexUnknown, fmt.Errorf("search returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.IndexUnknown, fmt.Errorf("read results: %w", err)
	}

	html := string(body)
	if strings.Contains(html, "did not match any documents") ||
		strings.Contains(html, "No results found") ||
		!strings.Contains(html, hostOf(pageURL)) {
		return domain.IndexNotIndexed, nil
	}
	return domain.IndexIndexed, nil
}

func hostOf(pageURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(pageURL, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
