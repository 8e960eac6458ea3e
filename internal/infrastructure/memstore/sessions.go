package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

// SessionStore keeps per-(domainId, date) sessions in memory. A single
// mutex guards the whole map: creation is an atomic check-and-insert, and
// Mutate gives callers the per-key mutual-exclusion discipline the request
// handlers and both schedulers share. Nothing holds the lock across network
// I/O; readers get deep copies, never live pointers.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

var _ ports.SessionRepository = (*SessionStore)(nil)

// NewSessionStore builds an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: map[string]*domain.Session{},
		now:      time.Now,
	}
}

// GetOrCreate returns a copy of the session for the key, atomically
// creating and registering an empty one on first access. It never fails.
func (s *SessionStore) GetOrCreate(domainID, date string) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureLocked(domainID, date)
	sess.RefreshPushStatus(s.now())
	return sess.Clone()
}

// Mutate runs fn on the live session under the store lock, creating the
// session first if needed.
func (s *SessionStore) Mutate(domainID, date string, fn func(*domain.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.ensureLocked(domainID, date))
}

func (s *SessionStore) ensureLocked(domainID, date string) *domain.Session {
	key := domain.SessionKey(domainID, date)
	sess, ok := s.sessions[key]
	if !ok {
		sess = &domain.Session{
			DomainID:    domainID,
			Date:        date,
			Articles:    []domain.Article{},
			FocusGroups: []domain.FocusGroup{},
		}
		s.sessions[key] = sess
	}
	return sess
}

// List returns session summaries for a domain sorted by date descending.
func (s *SessionStore) List(domainID string) []domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.SessionSummary{}
	for _, sess := range s.sessions {
		if sess.DomainID != domainID {
			continue
		}
		out = append(out, domain.SessionSummary{
			Date:            sess.Date,
			ArticleCount:    len(sess.Articles),
			FocusGroupCount: len(sess.FocusGroups),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Date, out[j].Date) > 0
	})
	return out
}

// TrackedArticles returns the union of tracked articles across all of a
// domain's sessions, deduplicated by article id with a URL-equality
// fallback.
func (s *SessionStore) TrackedArticles(domainID string) []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.sortedKeysLocked()
	seenID := map[string]struct{}{}
	seenURL := map[string]struct{}{}
	out := []domain.Article{}

	for _, key := range keys {
		sess := s.sessions[key]
		if sess.DomainID != domainID {
			continue
		}
		for i := range sess.Articles {
			a := sess.Articles[i]
			if !a.IsTracking {
				continue
			}
			if _, dup := seenID[a.ID]; dup {
				continue
			}
			if _, dup := seenURL[a.URL]; dup {
				continue
			}
			seenID[a.ID] = struct{}{}
			seenURL[a.URL] = struct{}{}
			out = append(out, a.Clone())
		}
	}
	return out
}

// TrackedRefs enumerates every tracked article across all sessions, for the
// snapshot scheduler to fetch outside the lock.
func (s *SessionStore) TrackedRefs() []ports.TrackedRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []ports.TrackedRef{}
	for _, key := range s.sortedKeysLocked() {
		sess := s.sessions[key]
		for i := range sess.Articles {
			if !sess.Articles[i].IsTracking {
				continue
			}
			out = append(out, ports.TrackedRef{
				DomainID:  sess.DomainID,
				Date:      sess.Date,
				ArticleID: sess.Articles[i].ID,
				URL:       sess.Articles[i].URL,
			})
		}
	}
	return out
}

// DeleteByDomain drops every session belonging to the domain and returns
// the ids of all articles they held, so callers can invalidate cache
// entries without leaving dangling keys.
func (s *SessionStore) DeleteByDomain(domainID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := []string{}
	for key, sess := range s.sessions {
		if sess.DomainID != domainID {
			continue
		}
		for i := range sess.Articles {
			removed = append(removed, sess.Articles[i].ID)
		}
		delete(s.sessions, key)
	}
	return removed
}

// sortedKeysLocked keeps enumeration order deterministic.
func (s *SessionStore) sortedKeysLocked() []string {
	keys := make([]string, 0, len(s.sessions))
	for key := range s.sessions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
