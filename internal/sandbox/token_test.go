package sandbox_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inspitereno-lang/entebhoomi/internal/sandbox"
)

func TestParseTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := sandbox.GenerateToken("secret", userID, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := sandbox.ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != userID {
		t.Errorf("user id = %s, want %s", got, userID)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := sandbox.GenerateToken("secret", uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := sandbox.ParseToken("other-secret", token); err == nil {
		t.Error("a token signed with a different secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := sandbox.GenerateToken("secret", uuid.New(), -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := sandbox.ParseToken("secret", token); err == nil {
		t.Error("an expired token must be rejected")
	}
}

func TestParseTokenPinsSigningMethod(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := sandbox.ParseToken("secret", signed); err == nil {
		t.Error("only HS256 tokens are acceptable, HS384 must be rejected")
	}
}
