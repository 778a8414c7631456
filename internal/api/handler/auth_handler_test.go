package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	sess := &stubSession{snap: domain.InitialSession()}
	sess.loginFn = func(_ context.Context, creds domain.LoginCredentials) (domain.Session, error) {
		if creds.UsernameOrEmail != "a@b.com" || creds.Password != "x" {
			t.Fatalf("unexpected credentials: %+v", creds)
		}
		sess.snap = authenticated("USER")
		return sess.snap, nil
	}
	c, rec := newContext(http.MethodPost, "/login", `{"usernameOrEmail":"a@b.com","password":"x"}`, &ports.Profile{Session: sess})

	if err := NewAuthHandler(&stubAuthAPI{}).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "authenticated" || resp["isAuthenticated"] != true {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	if _, leaked := resp["tokens"]; leaked {
		t.Fatalf("tokens must not be rendered: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected user in response, got %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	sess := &stubSession{snap: domain.InitialSession()}
	sess.loginFn = func(context.Context, domain.LoginCredentials) (domain.Session, error) {
		t.Fatalf("should not be called")
		return domain.Session{}, nil
	}
	c, _ := newContext(http.MethodPost, "/login", `{"password":"x"}`, &ports.Profile{Session: sess})

	err := NewAuthHandler(&stubAuthAPI{}).Login(c)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields["usernameOrEmail"]) == 0 {
		t.Fatalf("expected usernameOrEmail field error, got %+v", ve.Fields)
	}
}

func TestAuthHandler_Login_AlreadyAuthenticated(t *testing.T) {
	sess := &stubSession{snap: authenticated("USER")}
	sess.loginFn = func(context.Context, domain.LoginCredentials) (domain.Session, error) {
		t.Fatalf("should not be called")
		return domain.Session{}, nil
	}
	c, rec := newContext(http.MethodPost, "/login", `{"usernameOrEmail":"alice","password":"x"}`, &ports.Profile{Session: sess})

	if err := NewAuthHandler(&stubAuthAPI{}).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != domain.LandingPath {
		t.Fatalf("expected 303 to %s, got %d %s", domain.LandingPath, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_Login_UpstreamRejects(t *testing.T) {
	rejected := &domain.APIError{Kind: domain.KindAuth, Status: 401, Message: "Invalid credentials"}
	sess := &stubSession{snap: domain.InitialSession()}
	sess.loginFn = func(context.Context, domain.LoginCredentials) (domain.Session, error) {
		return domain.Session{Status: domain.StatusError, Error: "Invalid credentials"}, rejected
	}
	c, _ := newContext(http.MethodPost, "/login", `{"usernameOrEmail":"alice","password":"bad"}`, &ports.Profile{Session: sess})

	err := NewAuthHandler(&stubAuthAPI{}).Login(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected upstream auth error to propagate, got %v", err)
	}
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	sess := &stubSession{snap: domain.InitialSession()}
	sess.registerFn = func(context.Context, domain.Registration) (*domain.RegisterResult, error) {
		t.Fatalf("should not be called")
		return nil, nil
	}
	body := `{"username":"bob","email":"bob@example.com","password":"longenough","password2":"different1","firstName":"Bob","lastName":"Doe"}`
	c, _ := newContext(http.MethodPost, "/register", body, &ports.Profile{Session: sess})

	err := NewAuthHandler(&stubAuthAPI{}).Register(c)

	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["password2"]) == 0 {
		t.Fatalf("expected password2 field error, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	sess := &stubSession{snap: domain.InitialSession()}
	sess.registerFn = func(_ context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
		if reg.Username != "bob" || reg.Password2 != "longenough" {
			t.Fatalf("unexpected registration: %+v", reg)
		}
		return &domain.RegisterResult{Message: "User registered", User: domain.User{Username: "bob", Role: "USER"}}, nil
	}
	body := `{"username":"bob","email":"bob@example.com","password":"longenough","password2":"longenough","firstName":"Bob","lastName":"Doe"}`
	c, rec := newContext(http.MethodPost, "/register", body, &ports.Profile{Session: sess})

	if err := NewAuthHandler(&stubAuthAPI{}).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Next != domain.LoginPath || resp.User.Username != "bob" || resp.Message != "User registered" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if sess.snap.IsAuthenticated {
		t.Fatalf("registration must not authenticate")
	}
}

func TestAuthHandler_Session_ReportsAccessExpiry(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	snap := authenticated("ADMIN")
	snap.Tokens.Access = access

	c, rec := newContext(http.MethodGet, "/session", "", &ports.Profile{Session: &stubSession{snap: snap}})
	if err := NewAuthHandler(&stubAuthAPI{}).Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessExpiresAt == nil || !resp.AccessExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, resp.AccessExpiresAt)
	}
	if resp.AccessSubject != "7" || resp.AccessExpired {
		t.Fatalf("expected live token for subject 7, got subject=%q expired=%v", resp.AccessSubject, resp.AccessExpired)
	}
}

func TestAuthHandler_Session_FlagsExpiredAccess(t *testing.T) {
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	snap := authenticated("USER")
	snap.Tokens.Access = access

	c, rec := newContext(http.MethodGet, "/session", "", &ports.Profile{Session: &stubSession{snap: snap}})
	if err := NewAuthHandler(&stubAuthAPI{}).Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.AccessExpired {
		t.Fatalf("expected expired access token to be flagged")
	}
	if strings.Contains(rec.Body.String(), access) {
		t.Fatalf("access token leaked into the session view")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sess := &stubSession{snap: authenticated("USER")}
	c, rec := newContext(http.MethodPost, "/logout", "", &ports.Profile{Session: sess})

	if err := NewAuthHandler(&stubAuthAPI{}).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if sess.logouts != 1 {
		t.Fatalf("expected one logout, got %d", sess.logouts)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["status"] != "anonymous" || resp["user"] != nil {
		t.Fatalf("expected anonymous session, got %+v", resp)
	}
}

func TestAuthHandler_Profile_Anonymous(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/profile", "", &ports.Profile{Session: &stubSession{snap: domain.InitialSession()}})

	err := NewAuthHandler(&stubAuthAPI{}).Profile(c)
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	account := &stubAccount{}
	profile := &ports.Profile{Session: &stubSession{snap: authenticated("USER")}, Account: account}
	body := `{"oldPassword":"old-secret","newPassword":"new-secret","newPasswordConfirm":"new-secret"}`
	c, rec := newContext(http.MethodPost, "/password/change", body, profile)

	if err := NewAuthHandler(&stubAuthAPI{}).ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || account.old != "old-secret" || account.new != "new-secret" {
		t.Fatalf("unexpected result: %d %+v", rec.Code, account)
	}
}

func TestAuthHandler_ConfirmPasswordReset(t *testing.T) {
	auth := &stubAuthAPI{}
	c, rec := newContext(http.MethodPost, "/password/reset-confirm/MQ/abc-123", `{"newPassword":"brand-new1","confirmNewPassword":"brand-new1"}`, nil)
	c.SetParamNames("uid", "token")
	c.SetParamValues("MQ", "abc-123")

	if err := NewAuthHandler(auth).ConfirmPasswordReset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if auth.confirmUID != "MQ" || auth.confirmTok != "abc-123" || auth.confirmPassword != "brand-new1" {
		t.Fatalf("unexpected forwarded values: %+v", auth)
	}
}

func TestAuthHandler_RequestPasswordReset_InvalidEmail(t *testing.T) {
	auth := &stubAuthAPI{}
	c, _ := newContext(http.MethodPost, "/password/reset", `{"email":"not-an-email"}`, nil)

	err := NewAuthHandler(auth).RequestPasswordReset(c)

	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["email"]) == 0 {
		t.Fatalf("expected email field error, got %v", err)
	}
	if auth.resetEmail != "" {
		t.Fatalf("upstream should not be called")
	}
}
