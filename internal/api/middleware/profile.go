package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/core/ports"
)

// ProfileKey is the echo context key holding the request's *ports.Profile.
const ProfileKey = "profile"

// ProfileSource resolves a profile id to its in-memory bundle.
type ProfileSource interface {
	Get(ctx context.Context, id string) (*ports.Profile, error)
}

// CookieConfig describes the profile cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Profile identifies the browser by an httpOnly cookie, issuing a fresh id
// when the cookie is missing or malformed, and injects its profile.
func Profile(src ProfileSource, cookie CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cookie.Name); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookie.Name,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			profile, err := src.Get(c.Request().Context(), id)
			if err != nil {
				return err
			}
			c.Set(ProfileKey, profile)
			return next(c)
		}
	}
}

// ProfileFrom returns the profile injected by Profile, or nil.
func ProfileFrom(c echo.Context) *ports.Profile {
	p, _ := c.Get(ProfileKey).(*ports.Profile)
	return p
}
