// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pawmart/go-backend/internal/core"
)

type staticVerifier struct {
	claims map[string]*AccessTokenClaims
	err    error
}

func (v staticVerifier) VerifyAccessToken(token string) (*AccessTokenClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	claims, ok := v.claims[token]
	if !ok {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}
	return claims, nil
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"BEARER abc123", "abc123"},
		{"Token abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := ExtractToken(r); got != tc.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestAuthenticator(t *testing.T) {
	verifier := staticVerifier{claims: map[string]*AccessTokenClaims{
		"good-token": {UserID: "user-1", Role: "customer"},
	}}

	var gotUserID, gotRole string
	handler := Authenticator(verifier)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotUserID = GetUserID(r.Context())
			gotRole = GetUserRole(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if gotUserID != "user-1" || gotRole != "customer" {
			t.Fatalf("context = (%q, %q), want (user-1, customer)", gotUserID, gotRole)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	verifier := staticVerifier{claims: map[string]*AccessTokenClaims{
		"admin-token":    {UserID: "user-1", Role: "admin"},
		"customer-token": {UserID: "user-2", Role: "customer"},
	}}

	handler := Authenticator(verifier)(RequireAdmin(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	cases := []struct {
		token string
		want  int
	}{
		{"admin-token", http.StatusOK},
		{"customer-token", http.StatusForbidden},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+tc.token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != tc.want {
			t.Errorf("token %q: status = %d, want %d", tc.token, w.Code, tc.want)
		}
	}
}

func TestRequestID(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			got = GetRequestID(r.Context())
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got == "" {
		t.Fatal("expected a generated request id")
	}
	if w.Header().Get("X-Request-ID") != got {
		t.Fatal("request id must echo in the response header")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "upstream-id")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got != "upstream-id" {
		t.Fatalf("inbound request id not honored, got %q", got)
	}
}
