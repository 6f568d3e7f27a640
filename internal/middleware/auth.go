// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/pawmart/go-backend/internal/core"
)

// principalKey holds the verified claims for the request. User id and
// role accessors read through it; nothing is stored under separate keys.
const principalKey contextKey = "auth_principal"

// TokenVerifier checks an access token and returns its claims.
// *auth.TokenIssuer satisfies this.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*AccessTokenClaims, error)
}

// AccessTokenClaims is the narrow slice of the JWT the middleware layer
// needs after verification.
type AccessTokenClaims struct {
	UserID string
	Role   string
}

// Authenticator rejects requests without a valid bearer token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolvePrincipal(verifier, r)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. It must run after
// Authenticator; an unauthenticated request gets 401, a wrong role 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			switch {
			case role == "":
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
			case !slices.Contains(roles, role):
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

func resolvePrincipal(
	verifier TokenVerifier,
	r *http.Request,
) (*AccessTokenClaims, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, core.UnauthorizedError("missing authorization token")
	}
	return verifier.VerifyAccessToken(token)
}

// ExtractToken pulls the bearer token out of the Authorization header,
// returning "" when the header is absent or not a bearer scheme.
func ExtractToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey).(*AccessTokenClaims); ok {
		return p.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey).(*AccessTokenClaims); ok {
		return p.Role
	}
	return ""
}
