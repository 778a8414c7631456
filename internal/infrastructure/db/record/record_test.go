package record

import (
	"errors"
	"testing"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

func TestDecodeMissingKeys(t *testing.T) {
	tokens, user, err := Decode(map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens != nil || user != nil {
		t.Fatalf("expected nil values, got %v %v", tokens, user)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	values, err := Encode(domain.TokenPair{Access: "a", Refresh: "r"}, domain.User{ID: 7, Username: "alice", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tokens, user, err := Decode(values)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tokens.Access != "a" || tokens.Refresh != "r" {
		t.Fatalf("tokens = %+v", tokens)
	}
	if user.ID != 7 || user.Username != "alice" || user.Role != "ADMIN" {
		t.Fatalf("user = %+v", user)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	_, _, err := Decode(map[string]string{ports.TokensKey: "{not json", ports.UserKey: "{}"})
	if !errors.Is(err, ports.ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}
