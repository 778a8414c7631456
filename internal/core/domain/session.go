package domain

import "fmt"

// SessionStatus represents the lifecycle state of a console session.
type SessionStatus string

const (
	StatusAnonymous      SessionStatus = "anonymous"
	StatusAuthenticating SessionStatus = "authenticating"
	StatusAuthenticated  SessionStatus = "authenticated"
	StatusError          SessionStatus = "error"
)

// validTransitions defines the allowed state machine transitions. Resets to
// anonymous (logout, refresh failure) and restores from the token store are
// applied outside this table.
var validTransitions = map[SessionStatus][]SessionStatus{
	StatusAnonymous:      {StatusAuthenticating},
	StatusError:          {StatusAuthenticating, StatusAnonymous},
	StatusAuthenticating: {StatusAuthenticated, StatusError},
	StatusAuthenticated:  {StatusAnonymous},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is an immutable snapshot of one profile's authentication state.
// Snapshots are only produced by Reduce; pointer fields are never shared
// between two snapshots.
type Session struct {
	Status          SessionStatus `json:"status"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *User         `json:"user"`
	Tokens          *TokenPair    `json:"-"`
	Loading         bool          `json:"loading"`
	Error           string        `json:"error,omitempty"`
}

// InitialSession is the anonymous snapshot every profile starts from and
// returns to on logout.
func InitialSession() Session {
	return Session{Status: StatusAnonymous}
}

// Valid reports whether the snapshot is consistent: authenticated implies a
// user and an access token, and the flag agrees with the status.
func (s Session) Valid() bool {
	if s.IsAuthenticated != (s.Status == StatusAuthenticated) {
		return false
	}
	if s.IsAuthenticated && (s.User == nil || s.Tokens == nil || s.Tokens.Access == "") {
		return false
	}
	return true
}

// RefreshToken returns the refresh token held by the snapshot, if any.
func (s Session) RefreshToken() string {
	if s.Tokens == nil {
		return ""
	}
	return s.Tokens.Refresh
}

// Action is a session transition request consumed by Reduce.
type Action interface {
	Name() string
}

type (
	LoginStarted    struct{}
	LoginSucceeded  struct{ Result LoginResult }
	LoginFailed     struct{ Message string }
	RegisterStarted struct{}
	// RegisterFinished ends a registration; an empty Message means success.
	RegisterFinished struct{ Message string }
	TokenRefreshed   struct{ Result RefreshResult }
	SessionReset     struct{}
	ErrorCleared     struct{}
	SessionRestored  struct {
		User   User
		Tokens TokenPair
	}
)

func (LoginStarted) Name() string     { return "login_started" }
func (LoginSucceeded) Name() string   { return "login_succeeded" }
func (LoginFailed) Name() string      { return "login_failed" }
func (RegisterStarted) Name() string  { return "register_started" }
func (RegisterFinished) Name() string { return "register_finished" }
func (TokenRefreshed) Name() string   { return "token_refreshed" }
func (SessionReset) Name() string     { return "session_reset" }
func (ErrorCleared) Name() string     { return "error_cleared" }
func (SessionRestored) Name() string  { return "session_restored" }

// Reduce applies a to s and returns the next snapshot. It never mutates s,
// and it refuses any action whose result would not be Valid.
func Reduce(s Session, a Action) (Session, error) {
	next, err := reduce(s, a)
	if err != nil {
		return s, err
	}
	if !next.Valid() {
		return s, fmt.Errorf("%w: %s leaves an inconsistent session", ErrInvalidTransition, a.Name())
	}
	return next, nil
}

func reduce(s Session, a Action) (Session, error) {
	switch a := a.(type) {
	case LoginStarted:
		if !s.Status.CanTransitionTo(StatusAuthenticating) {
			return s, invalid(s.Status, StatusAuthenticating)
		}
		return Session{Status: StatusAuthenticating, Loading: true}, nil

	case LoginSucceeded:
		if !s.Status.CanTransitionTo(StatusAuthenticated) {
			return s, invalid(s.Status, StatusAuthenticated)
		}
		return authenticated(a.Result.User, a.Result.Tokens), nil

	case LoginFailed:
		if !s.Status.CanTransitionTo(StatusError) {
			return s, invalid(s.Status, StatusError)
		}
		return Session{Status: StatusError, Error: a.Message}, nil

	case RegisterStarted:
		if s.Status != StatusAnonymous && s.Status != StatusError {
			return s, fmt.Errorf("%w: register while %s", ErrInvalidTransition, s.Status)
		}
		return Session{Status: StatusAnonymous, Loading: true}, nil

	case RegisterFinished:
		next := copySession(s)
		next.Loading = false
		next.Error = a.Message
		return next, nil

	case TokenRefreshed:
		if s.Status != StatusAuthenticated || s.Tokens == nil {
			return s, fmt.Errorf("%w: refresh while %s", ErrInvalidTransition, s.Status)
		}
		tokens := s.Tokens.WithAccess(a.Result.Access)
		if a.Result.Refresh != "" {
			tokens.Refresh = a.Result.Refresh
		}
		return authenticated(*s.User, tokens), nil

	case SessionReset:
		return InitialSession(), nil

	case ErrorCleared:
		if s.Status == StatusError {
			return InitialSession(), nil
		}
		next := copySession(s)
		next.Error = ""
		return next, nil

	case SessionRestored:
		if s.Status != StatusAnonymous {
			return s, fmt.Errorf("%w: restore while %s", ErrInvalidTransition, s.Status)
		}
		return authenticated(a.User, a.Tokens), nil
	}

	return s, fmt.Errorf("%w: unknown action %T", ErrInvalidTransition, a)
}

func authenticated(u User, t TokenPair) Session {
	return Session{
		Status:          StatusAuthenticated,
		IsAuthenticated: true,
		User:            &u,
		Tokens:          &t,
	}
}

func copySession(s Session) Session {
	next := s
	if s.User != nil {
		u := *s.User
		next.User = &u
	}
	if s.Tokens != nil {
		t := *s.Tokens
		next.Tokens = &t
	}
	return next
}

func invalid(from, to SessionStatus) error {
	return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, from, to)
}
