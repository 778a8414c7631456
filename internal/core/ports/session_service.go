package ports

import (
	"context"

	"github.com/assetdesk/console/internal/core/domain"
)

// SessionService is the state container of one profile. Every mutation goes
// through one of its transitions.
type SessionService interface {
	Snapshot() domain.Session
	Restore(ctx context.Context) (domain.Session, error)
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error)
	Refresh(ctx context.Context) (domain.Session, error)
	Logout(ctx context.Context) domain.Session
	ClearError() domain.Session
}

// Profile bundles everything the console keeps for one browser profile.
type Profile struct {
	ID        string
	Session   SessionService
	Inventory InventoryAPI
	Account   AccountAPI
}
