package ports

import (
	"context"
	"errors"

	"github.com/assetdesk/console/internal/core/domain"
)

// Fixed keys under which a profile's credentials are persisted. Values are
// JSON-encoded strings.
const (
	TokensKey = "tokens"
	UserKey   = "user"
)

// ErrCorruptRecord is returned by Load when a persisted value cannot be decoded.
var ErrCorruptRecord = errors.New("token store: corrupt record")

// TokenStore persists one profile's token pair and user profile. It performs
// no expiry checks; expiry is discovered by a failed request.
type TokenStore interface {
	Save(ctx context.Context, tokens domain.TokenPair, user domain.User) error
	// Load returns nil values for keys that are not present.
	Load(ctx context.Context) (*domain.TokenPair, *domain.User, error)
	Clear(ctx context.Context) error
}

// TokenStoreProvider hands out token stores scoped to a single profile.
type TokenStoreProvider interface {
	ForProfile(profileID string) TokenStore
}
