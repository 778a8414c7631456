// Package record encodes a profile's credentials the way every token store
// backend persists them: one JSON string per fixed key.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

// Encode returns the values to persist under ports.TokensKey and ports.UserKey.
func Encode(tokens domain.TokenPair, user domain.User) (map[string]string, error) {
	t, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("encode tokens: %w", err)
	}
	u, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return map[string]string{
		ports.TokensKey: string(t),
		ports.UserKey:   string(u),
	}, nil
}

// Decode is the inverse of Encode. Missing keys yield nil values; a value
// that does not decode yields ports.ErrCorruptRecord.
func Decode(values map[string]string) (*domain.TokenPair, *domain.User, error) {
	var (
		tokens *domain.TokenPair
		user   *domain.User
	)
	if raw, ok := values[ports.TokensKey]; ok {
		tokens = new(domain.TokenPair)
		if err := json.Unmarshal([]byte(raw), tokens); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, ports.TokensKey, err)
		}
	}
	if raw, ok := values[ports.UserKey]; ok {
		user = new(domain.User)
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, ports.UserKey, err)
		}
	}
	return tokens, user, nil
}
