package auth

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewTokens_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokens("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret, got nil")
	}
}

func TestTokens_RoundTrip(t *testing.T) {
	t.Parallel()

	tokens, err := NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens failed: %v", err)
	}

	signed, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected subject 42, got %d", userID)
	}
}

func TestTokens_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokens("secret-a", time.Hour)
	verifier, _ := NewTokens("secret-b", time.Hour)

	signed, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokens_Expired(t *testing.T) {
	t.Parallel()

	secret := "test-secret"

	// Hand-craft a token whose expiry is in the past but whose signature is valid.
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(9, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tokens, _ := NewTokens(secret, time.Hour)
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokens_Garbage(t *testing.T) {
	t.Parallel()

	tokens, _ := NewTokens("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "definitely-not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiI0MiJ9"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tokens.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestTokens_NonNumericSubject(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	claims := &jwt.RegisteredClaims{
		Subject:   "not-a-number",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tokens, _ := NewTokens(secret, time.Hour)
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
