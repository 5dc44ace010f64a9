package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenIssuer = "reminder-api"

// TokenManager issues and verifies session tokens (HS256)
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}, nil
}

// Issue creates a signed token whose subject is the user's ID
func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(userID.String()).
		IssuedAt(now).
		Expiration(now.Add(m.expiry)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify validates a token's signature, expiry and issuer, and returns the
// user ID from the subject claim.
func (m *TokenManager) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, m.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	userID, err := uuid.Parse(token.Subject())
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a valid user ID: %w", err)
	}

	return userID, nil
}
