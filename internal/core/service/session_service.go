package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/metrics"
	"github.com/assetdesk/console/internal/pkg/tokeninfo"
)

const defaultRefreshTimeout = 10 * time.Second

// SessionListener is notified after every applied transition.
type SessionListener func(prev, next domain.Session)

// SessionService is the session state container of one profile. Transitions
// are serialized; Snapshot never blocks on a transition in flight.
type SessionService struct {
	profileID      string
	api            ports.AuthAPI
	store          ports.TokenStore
	revoker        ports.Revoker
	log            zerolog.Logger
	refreshTimeout time.Duration

	mu sync.Mutex // held for the whole of a transition, I/O included

	stateMu   sync.RWMutex
	state     domain.Session
	listeners map[int]SessionListener
	nextID    int

	flight singleflight.Group
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithRevoker sets how logout invalidates tokens remotely. Defaults to a
// SyncRevoker over the same AuthAPI.
func WithRevoker(r ports.Revoker) SessionOption {
	return func(s *SessionService) {
		if r != nil {
			s.revoker = r
		}
	}
}

// WithRefreshTimeout bounds the token refresh call.
func WithRefreshTimeout(d time.Duration) SessionOption {
	return func(s *SessionService) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *SessionService) {
		s.log = log
	}
}

func NewSessionService(profileID string, api ports.AuthAPI, store ports.TokenStore, opts ...SessionOption) *SessionService {
	s := &SessionService{
		profileID:      profileID,
		api:            api,
		store:          store,
		log:            zerolog.Nop(),
		refreshTimeout: defaultRefreshTimeout,
		state:          domain.InitialSession(),
		listeners:      make(map[int]SessionListener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.log = s.log.With().Str("component", "session").Str("profile", profileID).Logger()
	if s.revoker == nil {
		s.revoker = NewSyncRevoker(api, s.log)
	}
	return s
}

// Snapshot returns the current session state.
func (s *SessionService) Snapshot() domain.Session {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *SessionService) Subscribe(fn SessionListener) func() {
	s.stateMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.stateMu.Unlock()

	return func() {
		s.stateMu.Lock()
		delete(s.listeners, id)
		s.stateMu.Unlock()
	}
}

// Restore loads the persisted credentials. A complete record is trusted
// until the API first rejects it; partial or corrupt records are cleared.
func (s *SessionService) Restore(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, user, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrCorruptRecord) {
			return s.Snapshot(), fmt.Errorf("restore session: %w", err)
		}
		s.log.Warn().Err(err).Msg("discarding corrupt persisted session")
		s.clearStore(ctx)
		return s.Snapshot(), nil
	}

	if tokens == nil || user == nil || tokens.Access == "" {
		if tokens != nil || user != nil {
			s.log.Warn().Msg("discarding partial persisted session")
			s.clearStore(ctx)
		}
		return s.Snapshot(), nil
	}

	next, err := s.dispatch(domain.SessionRestored{User: *user, Tokens: *tokens})
	if err != nil {
		return next, fmt.Errorf("restore session: %w", err)
	}
	s.log.Debug().Str("username", user.Username).Msg("session restored")
	return next, nil
}

// Login authenticates against the API and persists the issued credentials.
func (s *SessionService) Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.dispatch(domain.LoginStarted{}); err != nil {
		return s.Snapshot(), err
	}

	res, err := s.api.Login(ctx, creds)
	if err == nil && res.Tokens.Access == "" {
		err = fmt.Errorf("%w: login response without tokens", domain.ErrInvalidPayload)
	}
	if err != nil {
		s.clearStore(ctx)
		next, _ := s.dispatch(domain.LoginFailed{Message: domain.DisplayMessage(err, "Login failed")})
		s.log.Info().Err(err).Msg("login failed")
		return next, fmt.Errorf("login: %w", err)
	}

	if err := s.store.Save(ctx, res.Tokens, res.User); err != nil {
		next, _ := s.dispatch(domain.LoginFailed{Message: "Login failed"})
		return next, fmt.Errorf("login: persist session: %w", err)
	}

	next, err := s.dispatch(domain.LoginSucceeded{Result: *res})
	if err != nil {
		return next, err
	}

	s.log.Info().
		Str("username", res.User.Username).
		Str("role", res.User.Role).
		Msg("login succeeded")
	return next, nil
}

// Register creates an account. It only toggles the loading flag and never
// authenticates; the caller logs in separately.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.dispatch(domain.RegisterStarted{}); err != nil {
		return nil, err
	}

	res, err := s.api.Register(ctx, reg)
	if err != nil {
		_, _ = s.dispatch(domain.RegisterFinished{Message: domain.DisplayMessage(err, "Registration failed")})
		return nil, fmt.Errorf("register: %w", err)
	}

	_, _ = s.dispatch(domain.RegisterFinished{})
	return res, nil
}

// Refresh exchanges the session's refresh token for a new access token.
// Failure is terminal: the store is cleared and the session reset.
func (s *SessionService) Refresh(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	refresh := cur.RefreshToken()
	if !cur.IsAuthenticated || refresh == "" {
		return cur, domain.ErrNotAuthenticated
	}

	callCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	res, err := s.api.RefreshToken(callCtx, refresh)
	cancel()
	if err == nil && res.Access == "" {
		err = fmt.Errorf("%w: refresh response without access token", domain.ErrInvalidPayload)
	}
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		s.clearStore(ctx)
		next, _ := s.dispatch(domain.SessionReset{})
		s.log.Warn().Err(err).Msg("token refresh failed, session cleared")
		return next, fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	next, err := s.dispatch(domain.TokenRefreshed{Result: *res})
	if err != nil {
		return next, err
	}
	if err := s.store.Save(ctx, *next.Tokens, *next.User); err != nil {
		s.log.Error().Err(err).Msg("failed to persist refreshed token")
	}

	ev := s.log.Debug()
	if info, ok := tokeninfo.Inspect(res.Access); ok {
		ev = ev.Str("subject", info.Subject)
		if !info.ExpiresAt.IsZero() {
			ev = ev.Time("access_expires_at", info.ExpiresAt)
		}
	}
	ev.Msg("access token refreshed")
	return next, nil
}

// RefreshAccess implements ports.TokenRefresher. Concurrent callers share a
// single in-flight refresh, which is detached from any one caller's
// cancellation.
func (s *SessionService) RefreshAccess(ctx context.Context) (string, error) {
	v, err, _ := s.flight.Do("refresh", func() (any, error) {
		next, err := s.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		return next.Tokens.Access, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrSessionExpired) {
			err = fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
		}
		return "", err
	}
	return v.(string), nil
}

// Logout hands the token pair to the revoker, then unconditionally clears
// the store and resets the session.
func (s *SessionService) Logout(ctx context.Context) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.Snapshot(); cur.Tokens != nil {
		s.revoker.Revoke(ctx, s.profileID, *cur.Tokens)
	}
	s.clearStore(ctx)

	next, _ := s.dispatch(domain.SessionReset{})
	s.log.Info().Msg("logged out")
	return next
}

// ClearError drops a displayed error.
func (s *SessionService) ClearError() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, _ := s.dispatch(domain.ErrorCleared{})
	return next
}

func (s *SessionService) clearStore(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear token store")
	}
}

// dispatch reduces the current snapshot with a and publishes the result.
func (s *SessionService) dispatch(a domain.Action) (domain.Session, error) {
	s.stateMu.Lock()
	prev := s.state
	next, err := domain.Reduce(prev, a)
	if err != nil {
		s.stateMu.Unlock()
		return prev, err
	}
	s.state = next
	listeners := make([]SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.stateMu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(a.Name()).Inc()
	switch {
	case !prev.IsAuthenticated && next.IsAuthenticated:
		metrics.AuthenticatedSessions.Inc()
	case prev.IsAuthenticated && !next.IsAuthenticated:
		metrics.AuthenticatedSessions.Dec()
	}

	for _, fn := range listeners {
		fn(prev, next)
	}
	return next, nil
}
