package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the subset of session claims the portal reads locally.
type Identity struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the identity has an expiry at or before now.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && !now.Before(id.ExpiresAt)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// ParseIdentity decodes the claims of a JWT without verifying its signature.
func ParseIdentity(token string) (Identity, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	id := Identity{Subject: claims.Subject, Roles: claims.Roles}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// JWTOption configures a JWTSource.
type JWTOption func(*JWTSource)

// WithLeeway treats tokens as expired d before their exp claim.
func WithLeeway(d time.Duration) JWTOption {
	return func(s *JWTSource) { s.leeway = d }
}

// WithNow replaces time.Now, mainly for tests.
func WithNow(now func() time.Time) JWTOption {
	return func(s *JWTSource) {
		if now != nil {
			s.now = now
		}
	}
}

// JWTSource rejects expired or malformed JWTs from an underlying source.
type JWTSource struct {
	src    TokenSource
	leeway time.Duration
	now    func() time.Time
}

// NewJWTSource wraps src with an expiry check.
func NewJWTSource(src TokenSource, opts ...JWTOption) *JWTSource {
	s := &JWTSource{src: src, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the wrapped source's token once its claims check out.
func (s *JWTSource) Token(ctx context.Context) (string, error) {
	token, err := s.src.Token(ctx)
	if err != nil {
		return "", err
	}
	id, err := ParseIdentity(token)
	if err != nil {
		return "", err
	}
	if id.Expired(s.now().Add(s.leeway)) {
		return "", fmt.Errorf("%w: expired at %s", ErrTokenExpired, id.ExpiresAt.Format(time.RFC3339))
	}
	return token, nil
}

// IsAuthError reports whether err came from credential handling.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenMalformed)
}

var _ TokenSource = (*JWTSource)(nil)
