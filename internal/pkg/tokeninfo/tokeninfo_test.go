package tokeninfo

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspect_JWT(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	info, ok := Inspect(signed)
	if !ok {
		t.Fatalf("expected JWT to be decoded")
	}
	if info.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp.UTC()) {
		t.Fatalf("expected exp %v, got %v", exp.UTC(), info.ExpiresAt)
	}
	if info.Expired(time.Now()) {
		t.Fatalf("token should not be expired yet")
	}
	if !info.Expired(exp.Add(time.Second)) {
		t.Fatalf("token should be expired after exp")
	}
}

func TestInspect_Opaque(t *testing.T) {
	if _, ok := Inspect("not-a-jwt"); ok {
		t.Fatalf("opaque token must not decode")
	}
	if _, ok := Inspect(""); ok {
		t.Fatalf("empty token must not decode")
	}
}
