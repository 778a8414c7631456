package ports

import (
	"context"

	"github.com/assetdesk/console/internal/core/domain"
)

// InventoryAPI is the bearer-protected CRUD surface of the asset API.
type InventoryAPI interface {
	ListAssets(ctx context.Context, filter domain.AssetFilter) (*domain.Page[domain.Asset], error)
	GetAsset(ctx context.Context, id int64) (*domain.Asset, error)
	CreateAsset(ctx context.Context, in domain.AssetInput) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, id int64, in domain.AssetInput) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListRequests(ctx context.Context, page int) (*domain.Page[domain.AssetRequest], error)
	ListUsers(ctx context.Context, page int) (*domain.Page[domain.User], error)
	DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error)
}

// AccountAPI holds the bearer-protected account operations.
type AccountAPI interface {
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}
