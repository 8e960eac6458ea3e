package memstore

import (
	"sync"

	"contentpulse/internal/ports"
)

// Settings holds the runtime-mutable analytics credential. The settings
// endpoint can swap the key while the schedulers are running.
type Settings struct {
	mu     sync.RWMutex
	apiKey string
}

var _ ports.CredentialStore = (*Settings)(nil)

// NewSettings seeds the store with the configured key, possibly empty.
func NewSettings(apiKey string) *Settings {
	return &Settings{apiKey: apiKey}
}

// APIKey returns the current provider key, empty when unconfigured.
func (s *Settings) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetAPIKey replaces the provider key.
func (s *Settings) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
}
