package domain

import (
	"errors"
	"testing"
)

func loginResult() LoginResult {
	return LoginResult{
		User:   User{ID: 7, Username: "alice", Email: "a@b.com", Role: "ADMIN"},
		Tokens: TokenPair{Access: "acc-1", Refresh: "ref-1"},
	}
}

func mustReduce(t *testing.T, s Session, a Action) Session {
	t.Helper()
	next, err := Reduce(s, a)
	if err != nil {
		t.Fatalf("reduce %s: %v", a.Name(), err)
	}
	if !next.Valid() {
		t.Fatalf("reduce %s produced invalid snapshot: %+v", a.Name(), next)
	}
	return next
}

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{StatusAnonymous, StatusAuthenticating, true},
		{StatusError, StatusAuthenticating, true},
		{StatusError, StatusAnonymous, true},
		{StatusAuthenticating, StatusAuthenticated, true},
		{StatusAuthenticating, StatusError, true},
		{StatusAuthenticated, StatusAnonymous, true},
		{StatusAnonymous, StatusAuthenticated, false},
		{StatusAuthenticated, StatusAuthenticating, false},
		{StatusAuthenticated, StatusError, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestReduce_LoginSuccess(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	if s.Status != StatusAuthenticating || !s.Loading {
		t.Fatalf("expected authenticating+loading, got %+v", s)
	}

	s = mustReduce(t, s, LoginSucceeded{Result: loginResult()})
	if !s.IsAuthenticated || s.Status != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %+v", s)
	}
	if s.Loading || s.Error != "" {
		t.Fatalf("expected loading and error cleared, got %+v", s)
	}
	if s.User.Email != "a@b.com" || s.Tokens.Access != "acc-1" {
		t.Fatalf("unexpected user/tokens: %+v %+v", s.User, s.Tokens)
	}
}

func TestReduce_LoginFailureClearsCredentials(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	s = mustReduce(t, s, LoginFailed{Message: "bad credentials"})

	if s.Status != StatusError || s.Error != "bad credentials" {
		t.Fatalf("expected error state, got %+v", s)
	}
	if s.User != nil || s.Tokens != nil || s.IsAuthenticated {
		t.Fatalf("expected credentials cleared, got %+v", s)
	}

	// error -> authenticating is allowed for a second attempt.
	if _, err := Reduce(s, LoginStarted{}); err != nil {
		t.Fatalf("retry login from error: %v", err)
	}
}

func TestReduce_LoginWhileAuthenticatedRejected(t *testing.T) {
	s := mustReduce(t, InitialSession(), SessionRestored{User: loginResult().User, Tokens: loginResult().Tokens})

	_, err := Reduce(s, LoginStarted{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReduce_RegisterNeverAuthenticates(t *testing.T) {
	s := mustReduce(t, InitialSession(), RegisterStarted{})
	if !s.Loading || s.Status != StatusAnonymous {
		t.Fatalf("expected anonymous+loading, got %+v", s)
	}

	s = mustReduce(t, s, RegisterFinished{})
	if s != InitialSession() {
		t.Fatalf("expected initial snapshot after successful register, got %+v", s)
	}

	s = mustReduce(t, s, RegisterStarted{})
	s = mustReduce(t, s, RegisterFinished{Message: "username taken"})
	if s.Status != StatusAnonymous || s.Error != "username taken" || s.IsAuthenticated {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestReduce_TokenRefreshedUpdatesAccessOnly(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	s = mustReduce(t, s, LoginSucceeded{Result: loginResult()})

	next := mustReduce(t, s, TokenRefreshed{Result: RefreshResult{Access: "acc-2"}})
	if next.Tokens.Access != "acc-2" || next.Tokens.Refresh != "ref-1" {
		t.Fatalf("unexpected tokens: %+v", next.Tokens)
	}
	if s.Tokens.Access != "acc-1" {
		t.Fatalf("previous snapshot was mutated: %+v", s.Tokens)
	}

	rotated := mustReduce(t, next, TokenRefreshed{Result: RefreshResult{Access: "acc-3", Refresh: "ref-2"}})
	if rotated.Tokens.Refresh != "ref-2" {
		t.Fatalf("expected rotated refresh token, got %+v", rotated.Tokens)
	}
}

func TestReduce_TokenRefreshedRequiresAuthentication(t *testing.T) {
	_, err := Reduce(InitialSession(), TokenRefreshed{Result: RefreshResult{Access: "x"}})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReduce_ResetReturnsInitialShape(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	s = mustReduce(t, s, LoginSucceeded{Result: loginResult()})
	s = mustReduce(t, s, SessionReset{})

	if s != InitialSession() {
		t.Fatalf("expected initial snapshot, got %+v", s)
	}
}

func TestReduce_ErrorCleared(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	s = mustReduce(t, s, LoginFailed{Message: "nope"})
	s = mustReduce(t, s, ErrorCleared{})
	if s != InitialSession() {
		t.Fatalf("expected initial snapshot, got %+v", s)
	}
}

func TestReduce_DoesNotShareUserPointer(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})
	s = mustReduce(t, s, LoginSucceeded{Result: loginResult()})
	next := mustReduce(t, s, ErrorCleared{})

	next.User.Username = "mallory"
	if s.User.Username != "alice" {
		t.Fatalf("snapshots share a user pointer")
	}
}

func TestReduce_RefusesAuthenticationWithoutAccessToken(t *testing.T) {
	s := mustReduce(t, InitialSession(), LoginStarted{})

	res := loginResult()
	res.Tokens.Access = ""
	next, err := Reduce(s, LoginSucceeded{Result: res})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if next != s {
		t.Fatalf("expected snapshot to be unchanged, got %+v", next)
	}

	authed := mustReduce(t, s, LoginSucceeded{Result: loginResult()})
	if _, err := Reduce(authed, TokenRefreshed{Result: RefreshResult{}}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected empty refreshed access to be refused, got %v", err)
	}
}

func TestSession_Valid(t *testing.T) {
	user := User{Username: "alice"}
	cases := []struct {
		name string
		s    Session
		want bool
	}{
		{"initial", InitialSession(), true},
		{"flag without status", Session{Status: StatusAnonymous, IsAuthenticated: true, User: &user, Tokens: &TokenPair{Access: "a"}}, false},
		{"status without flag", Session{Status: StatusAuthenticated}, false},
		{"no user", Session{Status: StatusAuthenticated, IsAuthenticated: true, Tokens: &TokenPair{Access: "a"}}, false},
		{"empty access", Session{Status: StatusAuthenticated, IsAuthenticated: true, User: &user, Tokens: &TokenPair{Refresh: "r"}}, false},
		{"authenticated", Session{Status: StatusAuthenticated, IsAuthenticated: true, User: &user, Tokens: &TokenPair{Access: "a"}}, true},
	}
	for _, tc := range cases {
		if got := tc.s.Valid(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
