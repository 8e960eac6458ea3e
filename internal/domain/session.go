package domain

import (
	"fmt"
	"time"
)

// FocusColors is the fixed palette assigned round-robin to focus groups by
// creation order within their session.
var FocusColors = []string{"#3b82f6", "#10b981", "#8b5cf6", "#f59e0b", "#ef4444", "#ec4899"}

// PushDueAfter is how long after a focus group's start time the push
// notification becomes due.
const PushDueAfter = 2 * time.Hour

// PushStatus carries the push-notification state of a focus group. Due is
// computed from the clock, never stored authoritatively.
type PushStatus struct {
	Due     bool       `json:"due"`
	Given   bool       `json:"given"`
	GivenAt *time.Time `json:"givenAt"`
}

// FocusGroup is a named, time-boxed bundle of article identifiers with a
// push-due timer. Membership is a weak reference: articles keep their own
// FocusGroupID pointing back, and the store maintains both sides.
type FocusGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	StartTime  string     `json:"startTime"`
	Color      string     `json:"color"`
	ArticleIDs []string   `json:"articles"`
	PushStatus PushStatus `json:"pushStatus"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// PushDue reports whether the push is due at the given instant: exactly
// PushDueAfter past StartTime on now's calendar day, unless already given.
// An unparseable start time never becomes due.
func (g FocusGroup) PushDue(now time.Time) bool {
	if g.PushStatus.Given {
		return false
	}
	start, err := time.ParseInLocation("15:04", g.StartTime, now.Location())
	if err != nil {
		return false
	}
	due := time.Date(now.Year(), now.Month(), now.Day(),
		start.Hour(), start.Minute(), 0, 0, now.Location()).Add(PushDueAfter)
	return !now.Before(due)
}

// Contains reports membership by article identifier.
func (g FocusGroup) Contains(articleID string) bool {
	for _, id := range g.ArticleIDs {
		if id == articleID {
			return true
		}
	}
	return false
}

// FocusGroupSummary is the denormalized view embedded in article detail
// responses.
type FocusGroupSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Session is the per-day working set for one domain: articles in insertion
// order plus focus groups. Exactly one session exists per (domainId, date).
type Session struct {
	DomainID    string       `json:"domainId"`
	Date        string       `json:"date"`
	Articles    []Article    `json:"articles"`
	FocusGroups []FocusGroup `json:"focusGroups"`
}

// SessionKey builds the store key for a (domainId, date) pair.
func SessionKey(domainID, date string) string {
	return fmt.Sprintf("%s_%s", domainID, date)
}

// SessionSummary is the history listing row for a domain's past sessions.
type SessionSummary struct {
	Date            string `json:"date"`
	ArticleCount    int    `json:"articleCount"`
	FocusGroupCount int    `json:"focusGroupCount"`
}

// FindArticle returns a pointer into the session's article slice, or nil.
// Callers must only use it while holding the store's session lock.
func (s *Session) FindArticle(articleID string) *Article {
	for i := range s.Articles {
		if s.Articles[i].ID == articleID {
			return &s.Articles[i]
		}
	}
	return nil
}

// FindFocusGroup returns a pointer into the session's focus-group slice, or
// nil. Same locking discipline as FindArticle.
func (s *Session) FindFocusGroup(groupID string) *FocusGroup {
	for i := range s.FocusGroups {
		if s.FocusGroups[i].ID == groupID {
			return &s.FocusGroups[i]
		}
	}
	return nil
}

// RefreshPushStatus recomputes the due flag on every focus group.
func (s *Session) RefreshPushStatus(now time.Time) {
	for i := range s.FocusGroups {
		s.FocusGroups[i].PushStatus.Due = s.FocusGroups[i].PushDue(now)
	}
}

// Clone returns a deep copy safe to serve outside the store lock.
func (s Session) Clone() Session {
	out := s
	out.Articles = make([]Article, len(s.Articles))
	for i, a := range s.Articles {
		out.Articles[i] = a.Clone()
	}
	out.FocusGroups = make([]FocusGroup, len(s.FocusGroups))
	for i, g := range s.FocusGroups {
		cloned := g
		cloned.ArticleIDs = append([]string(nil), g.ArticleIDs...)
		cloned.PushStatus.GivenAt = cloneTime(g.PushStatus.GivenAt)
		out.FocusGroups[i] = cloned
	}
	return out
}
