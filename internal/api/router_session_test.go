package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/api/handler"
	"github.com/assetdesk/console/internal/api/middleware"
	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/core/service"
	"github.com/assetdesk/console/internal/infrastructure/apiclient"
	"github.com/assetdesk/console/internal/infrastructure/db/memory"
)

const sessionCookie = "console_session"

// assetAPI fakes the upstream: login issues acc-1, refresh issues acc-2 when
// allowed, and the dashboard only accepts acc-2.
type assetAPI struct {
	refreshOK      bool
	refreshes      atomic.Int32
	dashboardCalls atomic.Int32
}

func (a *assetAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/login/":
		_, _ = w.Write([]byte(`{"message":"ok","user":{"id":1,"username":"alice","email":"a@b.com","role":"USER"},"tokens":{"access":"acc-1","refresh":"ref-1"}}`))
	case "/auth/token/refresh/":
		a.refreshes.Add(1)
		if !a.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":"acc-2"}`))
	case "/reports/metrics/dashboard/":
		a.dashboardCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer acc-2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid"}`))
			return
		}
		_, _ = w.Write([]byte(`{"assets":{"total":3,"available":2,"assigned":1,"utilization_rate":33.3}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type consoleHarness struct {
	router   http.Handler
	upstream *assetAPI
	tokens   *memory.Provider
	profiles *service.ProfileRegistry
	cookie   *http.Cookie
}

func newConsoleHarness(t *testing.T, refreshOK bool) *consoleHarness {
	t.Helper()

	upstream := &assetAPI{refreshOK: refreshOK}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL)
	tokens := memory.NewProvider()
	profiles := service.NewProfileRegistry(func(id string) *ports.Profile {
		store := tokens.ForProfile(id)
		sess := service.NewSessionService(id, client, store)
		authorized := client.Authorized(store, sess)
		return &ports.Profile{ID: id, Session: sess, Inventory: authorized, Account: authorized}
	}, zerolog.Nop())

	router := NewRouter(Deps{
		Profiles:  profiles,
		Auth:      client,
		Cookie:    middleware.CookieConfig{Name: sessionCookie},
		Readiness: map[string]handler.Pinger{},
		Log:       zerolog.Nop(),
		Registry:  prometheus.NewRegistry(),
	})
	return &consoleHarness{router: router, upstream: upstream, tokens: tokens, profiles: profiles}
}

func (h *consoleHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			h.cookie = c
		}
	}
	return rec
}

func (h *consoleHarness) login(t *testing.T) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/login", `{"usernameOrEmail":"a@b.com","password":"x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if h.cookie == nil {
		t.Fatalf("login did not issue a profile cookie")
	}
	if h.tokens.Len() != 1 {
		t.Fatalf("expected the login to be persisted, got %d records", h.tokens.Len())
	}
}

func TestRouter_RefreshFailureRedirectsToLogin(t *testing.T) {
	h := newConsoleHarness(t, false)
	h.login(t)

	rec := h.do(t, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != domain.LoginPath {
		t.Fatalf("expected redirect to %s, got %s", domain.LoginPath, loc)
	}
	if n := h.upstream.refreshes.Load(); n != 1 {
		t.Fatalf("expected exactly 1 refresh, got %d", n)
	}
	if n := h.upstream.dashboardCalls.Load(); n != 1 {
		t.Fatalf("expected no replay after a failed refresh, got %d dashboard calls", n)
	}
	if h.tokens.Len() != 0 {
		t.Fatalf("expected token store to be cleared, got %d records", h.tokens.Len())
	}

	rec = h.do(t, http.MethodGet, "/session", "")
	var s domain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid session json: %v", err)
	}
	if s.IsAuthenticated || s.Status != domain.StatusAnonymous || s.User != nil {
		t.Fatalf("expected anonymous session, got %+v", s)
	}

	rec = h.do(t, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != domain.LoginPath {
		t.Fatalf("expected guard redirect to login, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_RefreshSuccessReplaysRequest(t *testing.T) {
	h := newConsoleHarness(t, true)
	h.login(t)

	rec := h.do(t, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := h.upstream.refreshes.Load(); n != 1 {
		t.Fatalf("expected exactly 1 refresh, got %d", n)
	}
	if n := h.upstream.dashboardCalls.Load(); n != 2 {
		t.Fatalf("expected original call plus one replay, got %d", n)
	}

	var body struct {
		User    *domain.User             `json:"user"`
		Metrics *domain.DashboardMetrics `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid dashboard json: %v", err)
	}
	if body.User == nil || body.User.Username != "alice" || body.Metrics == nil || body.Metrics.Assets.Total != 3 {
		t.Fatalf("unexpected dashboard body: %s", rec.Body.String())
	}

	// The refreshed token is reused without another refresh.
	if rec := h.do(t, http.MethodGet, "/dashboard", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on second visit, got %d", rec.Code)
	}
	if n := h.upstream.refreshes.Load(); n != 1 {
		t.Fatalf("expected no further refresh, got %d", n)
	}
}

func TestRouter_EvictedProfileIsRestoredFromStore(t *testing.T) {
	h := newConsoleHarness(t, true)
	h.login(t)

	h.profiles.Drop(h.cookie.Value)
	if h.profiles.Len() != 0 {
		t.Fatalf("expected profile to be dropped, got %d", h.profiles.Len())
	}

	rec := h.do(t, http.MethodGet, "/session", "")
	var s domain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid session json: %v", err)
	}
	if !s.IsAuthenticated || s.User == nil || s.User.Username != "alice" {
		t.Fatalf("expected restored session, got %+v", s)
	}
}
