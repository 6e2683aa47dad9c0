package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func sessionToken(t *testing.T, exp time.Time) string {
	t.Helper()
	return signToken(t, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "student-17",
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(baseTime.Add(-time.Hour)),
		},
		Roles: []string{"student"},
	})
}

func TestParseIdentity(t *testing.T) {
	token := sessionToken(t, baseTime.Add(time.Hour))

	got, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	want := Identity{
		Subject:   "student-17",
		Roles:     []string{"student"},
		ExpiresAt: baseTime.Add(time.Hour),
		IssuedAt:  baseTime.Add(-time.Hour),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseIdentity() (-want +got):\n%s", diff)
	}
}

func TestParseIdentity_Malformed(t *testing.T) {
	_, err := ParseIdentity("not-a-jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("ParseIdentity() error = %v, want ErrTokenMalformed", err)
	}
}

func TestJWTSource(t *testing.T) {
	now := func() time.Time { return baseTime }

	tests := []struct {
		name    string
		src     TokenSource
		opts    []JWTOption
		wantErr error
	}{
		{"valid", StaticToken(sessionToken(t, baseTime.Add(time.Hour))), nil, nil},
		{"expired", StaticToken(sessionToken(t, baseTime.Add(-time.Second))), nil, ErrTokenExpired},
		{"expires at now", StaticToken(sessionToken(t, baseTime)), nil, ErrTokenExpired},
		{
			name:    "within leeway",
			src:     StaticToken(sessionToken(t, baseTime.Add(20*time.Second))),
			opts:    []JWTOption{WithLeeway(30 * time.Second)},
			wantErr: ErrTokenExpired,
		},
		{"no exp", StaticToken(signToken(t, jwt.RegisteredClaims{Subject: "s"})), nil, nil},
		{"malformed", StaticToken("abc.def"), nil, ErrTokenMalformed},
		{"missing", StaticToken(""), nil, ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJWTSource(tt.src, append([]JWTOption{WithNow(now)}, tt.opts...)...)
			_, err := s.Token(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Token() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !IsAuthError(err) {
				t.Errorf("IsAuthError(%v) = false", err)
			}
		})
	}
}

func TestStaticToken_StripsBearer(t *testing.T) {
	got, err := StaticToken("  Bearer abc123 ").Token(context.Background())
	if err != nil || got != "abc123" {
		t.Errorf("Token() = %q, %v; want %q, nil", got, err, "abc123")
	}
}
