package domain

import "time"

// IndexStatus describes where an article stands with the search index.
type IndexStatus string

const (
	IndexUnchecked  IndexStatus = "unchecked"
	IndexChecking   IndexStatus = "checking"
	IndexIndexed    IndexStatus = "indexed"
	IndexNotIndexed IndexStatus = "not-indexed"
	IndexUnknown    IndexStatus = "unknown"
)

// MaxHourlySnapshots bounds the rolling snapshot history per article.
const MaxHourlySnapshots = 10

// HourlySnapshot is one visitor-count sample with delta and percent-change
// computed against the previously stored snapshot, not the previous
// wall-clock hour. A missed capture cycle widens the effective interval.
type HourlySnapshot struct {
	Hour          string  `json:"hour"`
	Visitors      float64 `json:"visitors"`
	Delta         float64 `json:"delta"`
	PercentChange float64 `json:"percentChange"`
}

// Article is a single logged URL with its timeline metadata and rolling
// analytics history. Tracking and focus-group membership are independent
// flags: assignment forces IsTracking on, but toggling tracking off leaves
// FocusGroupID intact.
type Article struct {
	ID            string      `json:"id"`
	URL           string      `json:"url"`
	Label         string      `json:"label"`
	Title         string      `json:"title"`
	FeaturedImage string      `json:"featuredImage,omitempty"`
	IndexStatus   IndexStatus `json:"indexStatus"`
	IsTracking    bool        `json:"isTracking"`
	FocusGroupID  string      `json:"focusGroupId,omitempty"`

	AddedAt        time.Time  `json:"addedAt"`
	IndexedAt      *time.Time `json:"indexedAt"`
	FocusStartedAt *time.Time `json:"focusStartedAt"`
	PushGivenAt    *time.Time `json:"pushGivenAt"`

	HourlySnapshots []HourlySnapshot `json:"hourlySnapshots"`
}

// RecordSnapshot prepends a sample for the given hour bucket, computing
// delta and percent-change against the most recent stored snapshot, and
// truncates the history to MaxHourlySnapshots entries.
func (a *Article) RecordSnapshot(hour string, visitors float64) HourlySnapshot {
	var previous float64
	if len(a.HourlySnapshots) > 0 {
		previous = a.HourlySnapshots[0].Visitors
	}

	snap := HourlySnapshot{
		Hour:          hour,
		Visitors:      visitors,
		Delta:         visitors - previous,
		PercentChange: SnapshotPercentChange(visitors, previous),
	}

	a.HourlySnapshots = append([]HourlySnapshot{snap}, a.HourlySnapshots...)
	if len(a.HourlySnapshots) > MaxHourlySnapshots {
		a.HourlySnapshots = a.HourlySnapshots[:MaxHourlySnapshots]
	}

	return snap
}

// Clone returns a deep copy safe to hand outside the store lock.
func (a Article) Clone() Article {
	out := a
	out.IndexedAt = cloneTime(a.IndexedAt)
	out.FocusStartedAt = cloneTime(a.FocusStartedAt)
	out.PushGivenAt = cloneTime(a.PushGivenAt)
	if a.HourlySnapshots != nil {
		out.HourlySnapshots = append([]HourlySnapshot(nil), a.HourlySnapshots...)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
