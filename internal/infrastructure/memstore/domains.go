package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

// DomainStore keeps registered websites in memory.
type DomainStore struct {
	mu      sync.RWMutex
	domains map[string]domain.Domain
	order   []string
	now     func() time.Time
}

var _ ports.DomainRepository = (*DomainStore)(nil)

// NewDomainStore builds an empty store.
func NewDomainStore() *DomainStore {
	return &DomainStore{
		domains: map[string]domain.Domain{},
		now:     time.Now,
	}
}

// Create registers a website and returns the stored record.
func (s *DomainStore) Create(name, url string) domain.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := domain.Domain{
		ID:        uuid.New().String(),
		Name:      name,
		URL:       url,
		CreatedAt: s.now(),
	}
	s.domains[d.ID] = d
	s.order = append(s.order, d.ID)
	return d
}

// Get returns the domain by id.
func (s *DomainStore) Get(id string) (domain.Domain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	return d, ok
}

// List returns all domains in creation order.
func (s *DomainStore) List() []domain.Domain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Domain, 0, len(s.order))
	for _, id := range s.order {
		if d, ok := s.domains[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Delete removes a domain. Cascade cleanup of its sessions and cache
// entries is the caller's responsibility (see usecase.Content).
func (s *DomainStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[id]; !ok {
		return false
	}
	delete(s.domains, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// AdjustURLCount shifts the derived article counter.
func (s *DomainStore) AdjustURLCount(id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[id]
	if !ok {
		return
	}
	d.URLCount += delta
	if d.URLCount < 0 {
		d.URLCount = 0
	}
	s.domains[id] = d
}
