package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "valid bearer token",
			header:   "Bearer abc123",
			expected: "abc123",
		},
		{
			name:     "bearer with extra spaces",
			header:   "Bearer   token-with-spaces   ",
			expected: "token-with-spaces",
		},
		{
			name:     "lowercase bearer",
			header:   "bearer token123",
			expected: "token123",
		},
		{
			name:     "empty header",
			header:   "",
			expected: "",
		},
		{
			name:     "no bearer prefix",
			header:   "token123",
			expected: "",
		},
		{
			name:     "basic auth",
			header:   "Basic dXNlcjpwYXNz",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result := extractBearerToken(req)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	signed := adminToken(t, time.Hour)
	claims, err := m.parseToken(signed)
	if err != nil {
		t.Fatalf("parse valid token: %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("expected subject admin, got %q", claims.Subject)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := NewAuthMiddleware("other-secret")

	if _, err := m.parseToken(adminToken(t, time.Hour)); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestParseToken_RejectsUnsignedAlgorithm(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.parseToken(unsigned); err == nil {
		t.Error("expected error for alg=none token")
	}
}

func TestGetClaims(t *testing.T) {
	if GetClaims(context.Background()) != nil {
		t.Error("expected nil for context without claims")
	}

	claims := &jwt.RegisteredClaims{Subject: "admin"}
	ctx := context.WithValue(context.Background(), claimsContextKey, claims)
	if got := GetClaims(ctx); got == nil || got.Subject != "admin" {
		t.Errorf("expected stored claims, got %+v", got)
	}
}
