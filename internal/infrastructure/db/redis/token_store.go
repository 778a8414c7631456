package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/infrastructure/db/record"
)

// TokenStoreProvider persists profile credentials in Redis.
// Key format: console:profile:<profile_id>:<tokens|user>. Keys carry no TTL.
type TokenStoreProvider struct {
	client *redis.Client
}

// NewTokenStoreProvider creates a provider wrapping the given Redis client.
func NewTokenStoreProvider(client *redis.Client) *TokenStoreProvider {
	return &TokenStoreProvider{client: client}
}

func (p *TokenStoreProvider) ForProfile(profileID string) ports.TokenStore {
	return &TokenStore{client: p.client, profileID: profileID}
}

// Ping reports whether Redis is reachable.
func (p *TokenStoreProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type TokenStore struct {
	client    *redis.Client
	profileID string
}

// Save writes both keys in a single MULTI/EXEC transaction.
func (s *TokenStore) Save(ctx context.Context, tokens domain.TokenPair, user domain.User) error {
	values, err := record.Encode(tokens, user)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(ports.TokensKey), values[ports.TokensKey], 0)
		pipe.Set(ctx, s.key(ports.UserKey), values[ports.UserKey], 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("token store save: %w", err)
	}
	return nil
}

func (s *TokenStore) Load(ctx context.Context) (*domain.TokenPair, *domain.User, error) {
	keys := []string{ports.TokensKey, ports.UserKey}
	vals, err := s.client.MGet(ctx, s.key(keys[0]), s.key(keys[1])).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("token store load: %w", err)
	}

	values := make(map[string]string, len(keys))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			values[keys[i]] = str
		}
	}
	return record.Decode(values)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(ports.TokensKey), s.key(ports.UserKey)).Err(); err != nil {
		return fmt.Errorf("token store clear: %w", err)
	}
	return nil
}

func (s *TokenStore) key(name string) string {
	return fmt.Sprintf("console:profile:%s:%s", s.profileID, name)
}
