package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

const userAgent = "Mozilla/5.0 (compatible; ContentPulse/1.0)"

// Fetcher harvests OpenGraph image and title for an article URL. Best
// effort: callers store the article without metadata on any failure.
type Fetcher struct {
	client *http.Client
}

var _ ports.MetadataFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; timeout defaults to 5s.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads the page and extracts og:image and og:title, falling
// back to the document title.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (domain.PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.PageMetadata{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.PageMetadata{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PageMetadata{}, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.PageMetadata{}, fmt.Errorf("parse document: %w", err)
	}

	meta := domain.PageMetadata{
		Image: metaProperty(doc, "og:image"),
		Title: metaProperty(doc, "og:title"),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return meta, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	selector := fmt.Sprintf(`meta[property=%q]`, property)
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
