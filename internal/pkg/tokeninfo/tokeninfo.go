// Package tokeninfo reads the claims of a bearer token for display and
// logging. Tokens are decoded without signature verification: the console
// is not the audience and must never make authorization decisions on them.
package tokeninfo

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info holds the registered claims the console cares about.
type Info struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim lies before now. Tokens
// without exp never expire from the console's point of view.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect decodes token as a JWT. ok is false for opaque tokens.
func Inspect(token string) (info Info, ok bool) {
	if token == "" {
		return Info{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, false
	}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time.UTC()
	}
	return info, true
}
