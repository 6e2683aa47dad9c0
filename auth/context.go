package auth

import "context"

type contextKey int

const tokenKey contextKey = iota

// WithToken returns a context carrying a per-request bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, normalize(token))
}

// TokenFromContext returns the token set by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
