package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/api/middleware"
	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

type stubSession struct {
	snap       domain.Session
	loginFn    func(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error)
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error)
	logouts    int
}

func (s *stubSession) Snapshot() domain.Session { return s.snap }

func (s *stubSession) Restore(context.Context) (domain.Session, error) { return s.snap, nil }

func (s *stubSession) Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubSession) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubSession) Refresh(context.Context) (domain.Session, error) { return s.snap, nil }

func (s *stubSession) Logout(context.Context) domain.Session {
	s.logouts++
	s.snap = domain.InitialSession()
	return s.snap
}

func (s *stubSession) ClearError() domain.Session {
	s.snap.Error = ""
	return s.snap
}

// stubInventory embeds the interface so tests only implement what they call.
type stubInventory struct {
	ports.InventoryAPI
	listAssetsFn  func(ctx context.Context, f domain.AssetFilter) (*domain.Page[domain.Asset], error)
	categoriesFn  func(ctx context.Context) ([]domain.Category, error)
	departmentsFn func(ctx context.Context) ([]domain.Department, error)
	createFn      func(ctx context.Context, in domain.AssetInput) (*domain.Asset, error)
	updateFn      func(ctx context.Context, id int64, in domain.AssetInput) (*domain.Asset, error)
	metricsFn     func(ctx context.Context) (*domain.DashboardMetrics, error)
	usersFn       func(ctx context.Context, page int) (*domain.Page[domain.User], error)
}

func (s *stubInventory) ListAssets(ctx context.Context, f domain.AssetFilter) (*domain.Page[domain.Asset], error) {
	return s.listAssetsFn(ctx, f)
}

func (s *stubInventory) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoriesFn(ctx)
}

func (s *stubInventory) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departmentsFn(ctx)
}

func (s *stubInventory) CreateAsset(ctx context.Context, in domain.AssetInput) (*domain.Asset, error) {
	return s.createFn(ctx, in)
}

func (s *stubInventory) UpdateAsset(ctx context.Context, id int64, in domain.AssetInput) (*domain.Asset, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubInventory) DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	return s.metricsFn(ctx)
}

func (s *stubInventory) ListUsers(ctx context.Context, page int) (*domain.Page[domain.User], error) {
	return s.usersFn(ctx, page)
}

type stubAccount struct {
	old, new string
	err      error
}

func (s *stubAccount) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	s.old, s.new = oldPassword, newPassword
	return s.err
}

type stubAuthAPI struct {
	ports.AuthAPI
	resetEmail             string
	confirmUID, confirmTok string
	confirmPassword        string
}

func (s *stubAuthAPI) RequestPasswordReset(_ context.Context, email string) error {
	s.resetEmail = email
	return nil
}

func (s *stubAuthAPI) ConfirmPasswordReset(_ context.Context, uid, token, newPassword string) error {
	s.confirmUID, s.confirmTok, s.confirmPassword = uid, token, newPassword
	return nil
}

func authenticated(role string) domain.Session {
	return domain.Session{
		Status:          domain.StatusAuthenticated,
		IsAuthenticated: true,
		User:            &domain.User{ID: 7, Username: "alice", Role: role},
		Tokens:          &domain.TokenPair{Access: "access-token", Refresh: "refresh-token"},
	}
}

func newContext(method, target, body string, profile *ports.Profile) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if profile != nil {
		c.Set(middleware.ProfileKey, profile)
	}
	return c, rec
}
