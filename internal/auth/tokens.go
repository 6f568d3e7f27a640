// AngelaMos | 2026
// tokens.go

package auth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/pawmart/go-backend/internal/config"
	"github.com/pawmart/go-backend/internal/core"
	"github.com/pawmart/go-backend/internal/middleware"
)

const (
	minSecretLength = 32
	tokenSchema     = 1
	defaultTTL      = 3600 * time.Second
)

// placeholderSecrets are sample values that ship in docs and env
// templates. Booting with one of them is a deployment mistake, not a
// configuration choice, so the issuer refuses to start.
var placeholderSecrets = map[string]struct{}{
	"secret":                           {},
	"changeme":                         {},
	"change-me":                        {},
	"default-secret":                   {},
	"your-secret-key":                  {},
	"your-256-bit-secret":              {},
	"please-change-this-secret-value1": {},
}

var ttlPattern = regexp.MustCompile(`(?i)^(\d+)([smhd])$`)

// ParseTTL converts a configured lifetime into a duration. Accepted
// forms: a bare integer (seconds) or "<n><unit>" with unit one of
// s/m/h/d, case-insensitive. Empty or unparseable input falls back to
// one hour.
func ParseTTL(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultTTL
	}

	if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	m := ttlPattern.FindStringSubmatch(s)
	if m == nil {
		return defaultTTL
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultTTL
	}

	switch strings.ToLower(m[2]) {
	case "s":
		return time.Duration(n) * time.Second
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	case "d":
		return time.Duration(n) * 24 * time.Hour
	}

	return defaultTTL
}

// TokenIssuer mints signed access tokens and opaque refresh tokens.
type TokenIssuer struct {
	key        jwk.Key
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	secret := cfg.Secret
	if secret == "" {
		return nil, fmt.Errorf("token issuer: signing secret is not set")
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf(
			"token issuer: signing secret must be at least %d bytes, got %d",
			minSecretLength,
			len(secret),
		)
	}
	if _, known := placeholderSecrets[strings.ToLower(secret)]; known {
		return nil, fmt.Errorf(
			"token issuer: signing secret is a known placeholder value",
		)
	}

	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("token issuer: import signing key: %w", err)
	}

	return &TokenIssuer{
		key:        key,
		accessTTL:  ParseTTL(cfg.AccessTTL),
		refreshTTL: ParseTTL(cfg.RefreshTTL),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}, nil
}

func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *TokenIssuer) AccessTTLSeconds() int {
	return int(i.accessTTL / time.Second)
}

func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// CreateAccessToken builds and signs a short-lived token carrying the
// subject, role and an embedded user snapshot.
func (i *TokenIssuer) CreateAccessToken(user *UserInfo) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(i.issuer).
		Audience([]string{i.audience}).
		Subject(user.ID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(i.accessTTL)).
		Claim("role", user.Role).
		Claim("token_type", "access").
		Claim("schema_version", tokenSchema).
		Claim("user", map[string]any{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
			"is_active":  user.IsActive,
		}).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), i.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// VerifyAccessToken validates signature, expiry, not-before, issuer
// and audience, then enforces the shape this service mints: an
// embedded user object and token_type "access". Refresh tokens and
// foreign JWTs fail here even with a valid signature.
func (i *TokenIssuer) VerifyAccessToken(
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), i.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("token_type", &tokenType); err != nil ||
		tokenType != "access" {
		return nil, fmt.Errorf(
			"verify token: wrong token type: %w",
			core.ErrTokenInvalid,
		)
	}

	var userClaim map[string]any
	if err := token.Get("user", &userClaim); err != nil || len(userClaim) == 0 {
		return nil, fmt.Errorf(
			"verify token: missing user payload: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var roleStr string
	if err := token.Get("role", &roleStr); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.AccessTokenClaims{
		UserID: subject,
		Role:   roleStr,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

// CreateRefreshToken mints an opaque refresh token plus the hash under
// which its session row is stored.
func (i *TokenIssuer) CreateRefreshToken() (*RefreshTokenData, error) {
	token, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &RefreshTokenData{
		Token:     token,
		Hash:      core.HashToken(token),
		ExpiresAt: time.Now().Add(i.refreshTTL),
	}, nil
}
