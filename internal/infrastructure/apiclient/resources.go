package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

var (
	_ ports.InventoryAPI = (*Authorized)(nil)
	_ ports.AccountAPI   = (*Authorized)(nil)
	_ ports.AuthAPI      = (*Client)(nil)
)

func itemPath(collection string, id int64) string {
	return collection + strconv.FormatInt(id, 10) + "/"
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

func (a *Authorized) ListAssets(ctx context.Context, f domain.AssetFilter) (*domain.Page[domain.Asset], error) {
	q := pageQuery(f.Page)
	for key, val := range map[string]string{
		"search":     f.Search,
		"status":     f.Status,
		"category":   f.Category,
		"department": f.Department,
	} {
		if val != "" {
			q.Set(key, val)
		}
	}

	var out domain.Page[domain.Asset]
	if err := a.Do(ctx, http.MethodGet, "/assets/", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) GetAsset(ctx context.Context, id int64) (*domain.Asset, error) {
	var out domain.Asset
	if err := a.Do(ctx, http.MethodGet, itemPath("/assets/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) CreateAsset(ctx context.Context, in domain.AssetInput) (*domain.Asset, error) {
	var out domain.Asset
	if err := a.Do(ctx, http.MethodPost, "/assets/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) UpdateAsset(ctx context.Context, id int64, in domain.AssetInput) (*domain.Asset, error) {
	var out domain.Asset
	if err := a.Do(ctx, http.MethodPatch, itemPath("/assets/", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) DeleteAsset(ctx context.Context, id int64) error {
	return a.Do(ctx, http.MethodDelete, itemPath("/assets/", id), nil, nil, nil)
}

// ListCategories returns the first page of categories; the API pages
// lookup tables like any other collection.
func (a *Authorized) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out domain.Page[domain.Category]
	if err := a.Do(ctx, http.MethodGet, "/categories/", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return []domain.Category{}, nil
	}
	return out.Results, nil
}

func (a *Authorized) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := a.Do(ctx, http.MethodPost, "/categories/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := a.Do(ctx, http.MethodPatch, itemPath("/categories/", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) DeleteCategory(ctx context.Context, id int64) error {
	return a.Do(ctx, http.MethodDelete, itemPath("/categories/", id), nil, nil, nil)
}

func (a *Authorized) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var out domain.Page[domain.Department]
	if err := a.Do(ctx, http.MethodGet, "/departments/", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return []domain.Department{}, nil
	}
	return out.Results, nil
}

func (a *Authorized) ListRequests(ctx context.Context, page int) (*domain.Page[domain.AssetRequest], error) {
	var out domain.Page[domain.AssetRequest]
	if err := a.Do(ctx, http.MethodGet, "/requests/", pageQuery(page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) ListUsers(ctx context.Context, page int) (*domain.Page[domain.User], error) {
	var out domain.Page[domain.User]
	if err := a.Do(ctx, http.MethodGet, "/users/", pageQuery(page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Authorized) DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := a.Do(ctx, http.MethodGet, "/reports/metrics/dashboard/", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Assets == nil {
		return nil, fmt.Errorf("%w: dashboard metrics without assets", domain.ErrInvalidPayload)
	}
	return &out, nil
}

func (a *Authorized) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := domain.PasswordChange{
		OldPassword:        oldPassword,
		NewPassword:        newPassword,
		NewPasswordConfirm: newPassword,
	}
	return a.Do(ctx, http.MethodPost, "/auth/password/change/", nil, body, nil)
}
