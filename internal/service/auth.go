package service

import (
	"context"
	"crypto/subtle"

	"github.com/888Greys/rag-ai/internal/domain"
)

// AuthValidator resolves a bearer token to the email of the user it
// belongs to.
type AuthValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// StaticTokenValidator checks tokens against a fixed token-to-email
// table loaded from configuration.
type StaticTokenValidator struct {
	tokens map[string]string
}

// NewStaticTokenValidator creates a validator over a token-to-email map.
func NewStaticTokenValidator(tokens map[string]string) *StaticTokenValidator {
	return &StaticTokenValidator{tokens: tokens}
}

// Validate returns the email for token, comparing in constant time.
func (v *StaticTokenValidator) Validate(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}
	for candidate, email := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return email, nil
		}
	}
	return "", domain.ErrInvalidToken
}
