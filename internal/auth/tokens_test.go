// AngelaMos | 2026
// tokens_test.go

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/pawmart/go-backend/internal/config"
	"github.com/pawmart/go-backend/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:     testSecret,
		AccessTTL:  "15m",
		RefreshTTL: "7d",
		Issuer:     "pawmart-api",
		Audience:   "pawmart-app",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func testUser() *UserInfo {
	return &UserInfo{
		ID:        "6f1c2a90-0000-4000-8000-000000000001",
		Email:     "jo@example.com",
		FirstName: "Jo",
		LastName:  "Smith",
		Role:      RoleCustomer,
		IsActive:  true,
	}
}

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"3d", 72 * time.Hour},
		{"15s", 15 * time.Second},
		{"120", 120 * time.Second},
		{"7D", 7 * 24 * time.Hour},
		{"", time.Hour},
		{"junk", time.Hour},
		{"10x", time.Hour},
		{"-5m", time.Hour},
		{"0", time.Hour},
	}

	for _, tc := range cases {
		if got := ParseTTL(tc.in); got != tc.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewTokenIssuer_RejectsBadSecrets(t *testing.T) {
	cases := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"too short", "shortsecret"},
		{"placeholder", "please-change-this-secret-value1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTokenIssuer(config.JWTConfig{Secret: tc.secret})
			if err == nil {
				t.Fatalf("expected error for secret %q", tc.secret)
			}
		})
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)
	user := testUser()

	signed, err := issuer.CreateAccessToken(user)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	claims, err := issuer.VerifyAccessToken(signed)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Role != RoleCustomer {
		t.Errorf("Role = %q, want %q", claims.Role, RoleCustomer)
	}

	key, err := jwk.Import([]byte(testSecret))
	if err != nil {
		t.Fatalf("jwk.Import: %v", err)
	}
	token, err := jwt.Parse([]byte(signed), jwt.WithKey(jwa.HS256(), key))
	if err != nil {
		t.Fatalf("jwt.Parse: %v", err)
	}

	iat, ok := token.IssuedAt()
	if !ok {
		t.Fatal("token must carry iat")
	}
	exp, ok := token.Expiration()
	if !ok {
		t.Fatal("token must carry exp")
	}
	if got := exp.Sub(iat); got != issuer.AccessTTL() {
		t.Errorf("exp - iat = %v, want the configured TTL %v", got, issuer.AccessTTL())
	}
}

func TestVerifyAccessToken_Tampered(t *testing.T) {
	issuer := newTestIssuer(t)

	signed, err := issuer.CreateAccessToken(testUser())
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	tampered := signed[:len(signed)-4] + "AAAA"
	if _, err := issuer.VerifyAccessToken(tampered); !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("tampered token: got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(t)

	other, err := NewTokenIssuer(config.JWTConfig{
		Secret:   "another-secret-that-is-long-enough-0001",
		Issuer:   "pawmart-api",
		Audience: "pawmart-app",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	signed, err := other.CreateAccessToken(testUser())
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	if _, err := issuer.VerifyAccessToken(signed); !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("foreign signature: got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	issuer := newTestIssuer(t)
	signed := signTestToken(t, time.Now().Add(-time.Minute), "access")

	if _, err := issuer.VerifyAccessToken(signed); !errors.Is(err, core.ErrTokenExpired) {
		t.Fatalf("expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestVerifyAccessToken_WrongType(t *testing.T) {
	issuer := newTestIssuer(t)
	signed := signTestToken(t, time.Now().Add(time.Hour), "refresh")

	if _, err := issuer.VerifyAccessToken(signed); !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("wrong token_type: got %v, want ErrTokenInvalid", err)
	}
}

// signTestToken builds a token with the test secret directly, so expiry
// and type can be forced without waiting out a TTL.
func signTestToken(t *testing.T, exp time.Time, tokenType string) string {
	t.Helper()

	key, err := jwk.Import([]byte(testSecret))
	if err != nil {
		t.Fatalf("jwk.Import: %v", err)
	}

	user := testUser()
	token, err := jwt.NewBuilder().
		Issuer("pawmart-api").
		Audience([]string{"pawmart-app"}).
		Subject(user.ID).
		IssuedAt(exp.Add(-time.Hour)).
		Expiration(exp).
		Claim("role", user.Role).
		Claim("token_type", tokenType).
		Claim("user", map[string]any{"id": user.ID, "email": user.Email}).
		Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return string(signed)
}

func TestCreateRefreshToken(t *testing.T) {
	issuer := newTestIssuer(t)

	first, err := issuer.CreateRefreshToken()
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	second, err := issuer.CreateRefreshToken()
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}

	if first.Token == second.Token {
		t.Fatal("two refresh tokens must differ")
	}

	if strings.ContainsAny(first.Token, "=+/") {
		t.Errorf("token %q must be unpadded base64url", first.Token)
	}

	raw, err := base64.RawURLEncoding.DecodeString(first.Token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != 40 {
		t.Errorf("decoded length = %d, want 40", len(raw))
	}

	if first.Hash != core.HashToken(first.Token) {
		t.Error("Hash must be the SHA-256 of the token")
	}

	wantExp := time.Now().Add(7 * 24 * time.Hour)
	if diff := first.ExpiresAt.Sub(wantExp); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want about %v", first.ExpiresAt, wantExp)
	}
}
