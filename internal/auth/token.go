// Package auth resolves bearer credentials to user ids. Tokens are HS256 JWTs
// whose subject claim carries the user id; issuing them is the identity
// provider's job, not this service's.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredential indicates no usable Authorization header.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential indicates the token failed verification.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Verifier validates bearer tokens against a shared HS256 secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// UserFromHeader extracts and verifies the bearer token from an Authorization
// header value and returns the user id it is bound to.
func (v *Verifier) UserFromHeader(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingCredential
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingCredential
	}
	return v.UserFromToken(strings.TrimSpace(parts[1]))
}

// UserFromToken verifies a raw token and returns its subject.
func (v *Verifier) UserFromToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidCredential
	}
	return sub, nil
}

// IssueToken signs a token for the given user id. Used by tests and local
// development; production tokens come from the identity provider.
func (v *Verifier) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
