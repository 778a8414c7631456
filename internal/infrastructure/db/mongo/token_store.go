package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/infrastructure/db/record"
)

const profileCollection = "console_profiles"

// TokenStoreProvider keeps one document per profile in console_profiles.
type TokenStoreProvider struct {
	coll *mongo.Collection
}

func NewTokenStoreProvider(db *mongo.Database) *TokenStoreProvider {
	return &TokenStoreProvider{coll: db.Collection(profileCollection)}
}

func (p *TokenStoreProvider) ForProfile(profileID string) ports.TokenStore {
	return &TokenStore{coll: p.coll, profileID: profileID}
}

// Ping reports whether the deployment is reachable.
func (p *TokenStoreProvider) Ping(ctx context.Context) error {
	return p.coll.Database().Client().Ping(ctx, nil)
}

// mongoProfile holds the JSON-encoded values; absent fields decode to nil.
type mongoProfile struct {
	ID        string  `bson:"_id"`
	Tokens    *string `bson:"tokens,omitempty"`
	User      *string `bson:"user,omitempty"`
	UpdatedAt int64   `bson:"updated_at"`
}

type TokenStore struct {
	coll      *mongo.Collection
	profileID string
}

func (s *TokenStore) Save(ctx context.Context, tokens domain.TokenPair, user domain.User) error {
	values, err := record.Encode(tokens, user)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		ports.TokensKey: values[ports.TokensKey],
		ports.UserKey:   values[ports.UserKey],
		"updated_at":    time.Now().UTC().Unix(),
	}}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": s.profileID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *TokenStore) Load(ctx context.Context) (*domain.TokenPair, *domain.User, error) {
	var doc mongoProfile
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.profileID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("find profile: %w", err)
	}

	values := make(map[string]string, 2)
	if doc.Tokens != nil {
		values[ports.TokensKey] = *doc.Tokens
	}
	if doc.User != nil {
		values[ports.UserKey] = *doc.User
	}
	return record.Decode(values)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.profileID}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
