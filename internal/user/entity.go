// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash *string    `db:"password_hash"`
	GoogleID     *string    `db:"google_id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	Phone        *string    `db:"phone"`
	Address      *string    `db:"address"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFederated reports whether the account was created through a
// federated signup and has no local password.
func (u *User) IsFederated() bool {
	return u.GoogleID != nil && u.PasswordHash == nil
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// CustomerProfile is the optional 1:1 extension of a customer account.
// It is created best-effort during registration and never required to
// exist.
type CustomerProfile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Phone     *string   `db:"phone" json:"phone"`
	Location  *string   `db:"location" json:"location"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
