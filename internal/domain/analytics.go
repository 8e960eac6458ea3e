package domain

import (
	"math"
	"time"
)

// Metrics is a flat mapping from provider metric name to value. Metrics
// absent from a provider response are reported as 0.
type Metrics map[string]float64

// Visitors returns the visitors metric, 0 when missing.
func (m Metrics) Visitors() float64 {
	return m["visitors"]
}

// TrendPoint is one hourly bucket of the same-day trend query.
type TrendPoint struct {
	Time      string  `json:"time"`
	Visitors  float64 `json:"visitors"`
	Pageviews float64 `json:"pageviews"`
}

// ArticleAnalytics is the normalized per-article payload assembled from the
// provider's realtime, trend and totals queries. PreviousPeriod currently
// mirrors the current totals (see DESIGN.md); the comparison interface is
// preserved as-is pending product clarification.
type ArticleAnalytics struct {
	Realtime       Metrics      `json:"realtime"`
	HourlyData     []TrendPoint `json:"hourlyData"`
	Totals         Metrics      `json:"totals"`
	PreviousPeriod Metrics      `json:"previousPeriod"`
	PercentChange  int          `json:"percentChange"`
	LastUpdated    time.Time    `json:"lastUpdated"`
}

// AnalyticsResult is one entry of the read-path response: either a payload
// or an error marker, never both. A failed article never poisons siblings.
type AnalyticsResult struct {
	*ArticleAnalytics
	Error string `json:"error,omitempty"`
}

// CacheInfo tells the caller how fresh the served payloads may be.
type CacheInfo struct {
	TTLMinutes  int       `json:"ttlMinutes"`
	NextRefresh time.Time `json:"nextRefresh"`
}

// PercentChange computes the whole-percent change of current over previous.
// A zero baseline maps to 100 when anything arrived and 0 otherwise. Every
// surface that shows a percent change goes through here.
func PercentChange(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(100 * (current - previous) / previous))
}

// SnapshotPercentChange is the hourly-snapshot variant: one decimal place,
// +100 when growth appears from a zero baseline.
func SnapshotPercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

// PageMetadata is the best-effort OpenGraph harvest for an article URL.
type PageMetadata struct {
	Image string
	Title string
}
