package domain

import (
	"net/url"
	"strings"
	"time"
)

// Domain is a registered website whose articles the team tracks.
type Domain struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	URLCount  int       `json:"urlCount"`
}

// SiteID derives the analytics provider site identifier from the domain URL:
// the hostname with a leading "www." label stripped. An unparseable URL is
// returned verbatim so a misconfigured domain still produces a stable key.
func (d Domain) SiteID() string {
	return SiteIDFromURL(d.URL)
}

// SiteIDFromURL maps a canonical site URL to its analytics site_id.
func SiteIDFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
