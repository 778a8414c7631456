package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

// ProfileFactory builds the per-profile bundle for a new profile id.
type ProfileFactory func(profileID string) *ports.Profile

type profileEntry struct {
	profile  *ports.Profile
	once     sync.Once
	err      error
	lastSeen time.Time
}

// ProfileRegistry keeps one session container per browser profile in memory.
// Evicted profiles lose nothing: their credentials stay in the token store
// and are restored on the next visit.
type ProfileRegistry struct {
	factory ProfileFactory
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*profileEntry
}

func NewProfileRegistry(factory ProfileFactory, log zerolog.Logger) *ProfileRegistry {
	return &ProfileRegistry{
		factory: factory,
		log:     log.With().Str("component", "profiles").Logger(),
		now:     time.Now,
		entries: make(map[string]*profileEntry),
	}
}

// Get returns the profile for id, creating and restoring it on first use.
func (r *ProfileRegistry) Get(ctx context.Context, id string) (*ports.Profile, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &profileEntry{profile: r.factory(id)}
		r.entries[id] = e
		metrics.ActiveProfiles.Inc()
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.once.Do(func() {
		_, e.err = e.profile.Session.Restore(ctx)
	})
	if e.err != nil {
		r.remove(id, e)
		return nil, e.err
	}
	return e.profile, nil
}

// Drop forgets the in-memory state of id.
func (r *ProfileRegistry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if ok {
		r.remove(id, e)
	}
}

// Len returns the number of profiles held in memory.
func (r *ProfileRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts profiles not seen for longer than idle and returns how many
// were evicted.
func (r *ProfileRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	stale := make(map[string]*profileEntry)
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			stale[id] = e
		}
	}
	r.mu.Unlock()

	for id, e := range stale {
		r.remove(id, e)
	}
	return len(stale)
}

// Run sweeps idle profiles every interval until ctx is cancelled.
func (r *ProfileRegistry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.log.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("idle profiles evicted")
			}
		}
	}
}

// remove deletes id only if it still maps to e.
func (r *ProfileRegistry) remove(id string, e *profileEntry) {
	r.mu.Lock()
	cur, ok := r.entries[id]
	if !ok || cur != e {
		r.mu.Unlock()
		return
	}
	delete(r.entries, id)
	r.mu.Unlock()

	metrics.ActiveProfiles.Dec()
	if e.profile.Session.Snapshot().IsAuthenticated {
		metrics.AuthenticatedSessions.Dec()
	}
}
