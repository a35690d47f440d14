package auth

import (
	"fmt"
	"time"

	"github.com/aescanero/basecamp/internal/config"
)

// TokenIssuer issues and verifies bearer access tokens.
type TokenIssuer struct {
	signer    *signer
	expiresIn time.Duration
}

// NewTokenIssuer creates an issuer from the auth view. It fails when
// JWT_EXPIRES_IN is not a recognizable duration.
func NewTokenIssuer(view config.AuthView) (*TokenIssuer, error) {
	expiresIn, err := config.ParseExpiresIn(view.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	return &TokenIssuer{
		signer:    newSigner(view.JWTSecret, useAccess),
		expiresIn: expiresIn,
	}, nil
}

// ExpiresIn returns the lifetime of issued tokens.
func (t *TokenIssuer) ExpiresIn() time.Duration {
	return t.expiresIn
}

// Generate creates an access token for subject.
func (t *TokenIssuer) Generate(subject string) (string, error) {
	return t.signer.generate(subject, t.expiresIn)
}

// Verify validates an access token and returns its subject.
func (t *TokenIssuer) Verify(token string) (string, error) {
	return t.signer.verify(token)
}
