package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/assetdesk/console/internal/core/domain"
)

// Auth endpoints. They are called without a bearer token (logout excepted)
// and are never intercepted.
const (
	pathLogin         = "/auth/login/"
	pathRegister      = "/auth/register/"
	pathTokenRefresh  = "/auth/token/refresh/"
	pathLogout        = "/auth/logout/"
	pathPasswordReset = "/auth/password/reset/"
	pathResetConfirm  = "/auth/password/reset-confirm/"
)

func (c *Client) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.LoginResult, error) {
	var out domain.LoginResult
	if err := c.post(ctx, pathLogin, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	var out domain.RegisterResult
	if err := c.post(ctx, pathRegister, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*domain.RefreshResult, error) {
	var out domain.RefreshResult
	if err := c.post(ctx, pathTokenRefresh, map[string]string{"refresh": refresh}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout blacklists the refresh token. The access token authenticates the call.
func (c *Client) Logout(ctx context.Context, tokens domain.TokenPair) error {
	r, err := newRequest(http.MethodPost, pathLogout, nil, map[string]string{"refresh": tokens.Refresh})
	if err != nil {
		return err
	}
	return c.do(ctx, r, tokens.Access, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, pathPasswordReset, map[string]string{"email": email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	path := pathResetConfirm + url.PathEscape(uid) + "/" + url.PathEscape(token) + "/"
	body := domain.PasswordResetConfirm{NewPassword: newPassword, ConfirmNewPassword: newPassword}
	return c.post(ctx, path, body, nil)
}
