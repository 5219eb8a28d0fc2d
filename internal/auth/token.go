package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors.
var (
	// ErrTokenInvalid indicates a token whose signature or claims do not validate.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its embedded expiry.
	ErrTokenExpired = errors.New("token expired")
)

// tokenIssuer is the iss claim stamped on every issued token.
const tokenIssuer = "almagid-api"

// Tokens issues and verifies signed bearer tokens carrying a user ID subject.
// The signing secret comes from configuration; there is no default.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier with the given symmetric secret
// and token lifetime.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed HS256 token binding the user ID as subject,
// with issued-at and expiry claims.
func (t *Tokens) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry and returns the subject
// user ID. Returns ErrTokenExpired for a valid signature past its expiry,
// ErrTokenInvalid for everything else.
func (t *Tokens) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
