package auth

import (
	"context"
	"strings"
)

// TokenSource yields the bearer token for the current user.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: return ErrMissingToken when no user is signed in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

type staticToken string

// StaticToken returns a source that always yields token. Surrounding space
// and a leading "Bearer " are stripped.
func StaticToken(token string) TokenSource {
	return staticToken(normalize(token))
}

func (s staticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrMissingToken
	}
	return string(s), nil
}

func normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
