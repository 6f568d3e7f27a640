// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session binds a stored refresh token to a user and the client context
// that created it. The raw token is never persisted; TokenHash is the
// SHA-256 of the opaque value handed to the client.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
