package ports

import (
	"context"

	"github.com/assetdesk/console/internal/core/domain"
)

// AuthAPI is the unauthenticated part of the asset API. Calls made through it
// never trigger a token refresh.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*domain.LoginResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error)
	RefreshToken(ctx context.Context, refresh string) (*domain.RefreshResult, error)
	Logout(ctx context.Context, tokens domain.TokenPair) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error
}

// TokenRefresher obtains a fresh access token for a profile after the API
// rejected the current one.
type TokenRefresher interface {
	RefreshAccess(ctx context.Context) (string, error)
}

// Revoker invalidates a token pair remotely. Failures are the implementation's
// to log; callers never see them.
type Revoker interface {
	Revoke(ctx context.Context, profileID string, tokens domain.TokenPair)
}
