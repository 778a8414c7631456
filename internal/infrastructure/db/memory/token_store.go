// Package memory provides a process-local token store for development and
// tests. Its contents do not survive a restart.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/infrastructure/db/record"
)

// Provider holds the records of every profile.
type Provider struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string
}

func NewProvider() *Provider {
	return &Provider{profiles: make(map[string]map[string]string)}
}

// ForProfile returns the store scoped to profileID.
func (p *Provider) ForProfile(profileID string) ports.TokenStore {
	return &TokenStore{provider: p, profileID: profileID}
}

// Len reports how many profiles have a persisted record.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.profiles)
}

// Set writes a raw value. It exists so tests can plant partial or corrupt records.
func (p *Provider) Set(profileID, key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.profiles[profileID]
	if !ok {
		rec = make(map[string]string)
		p.profiles[profileID] = rec
	}
	rec[key] = value
}

type TokenStore struct {
	provider  *Provider
	profileID string
}

func (s *TokenStore) Save(_ context.Context, tokens domain.TokenPair, user domain.User) error {
	values, err := record.Encode(tokens, user)
	if err != nil {
		return err
	}
	s.provider.mu.Lock()
	s.provider.profiles[s.profileID] = values
	s.provider.mu.Unlock()
	return nil
}

func (s *TokenStore) Load(_ context.Context) (*domain.TokenPair, *domain.User, error) {
	s.provider.mu.RLock()
	values := maps.Clone(s.provider.profiles[s.profileID])
	s.provider.mu.RUnlock()
	return record.Decode(values)
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.provider.mu.Lock()
	delete(s.provider.profiles, s.profileID)
	s.provider.mu.Unlock()
	return nil
}
