// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

// RegisterRequest is the raw registration payload. Everything beyond
// the base identity fields is role-specific and optional; the
// credential validator decides what applies.
type RegisterRequest struct {
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Role              string   `json:"role"`
	GoogleID          string   `json:"google_id,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Address           string   `json:"address,omitempty"`
	Location          string   `json:"location,omitempty"`
	DateOfBirth       string   `json:"date_of_birth,omitempty"`
	PreferredPetTypes []string `json:"preferred_pet_types,omitempty"`
	AdminCode         string   `json:"admin_code,omitempty"`
	AdminDepartment   string   `json:"admin_department,omitempty"`
}

// LocationValue returns the location-like field of the payload,
// accepting either "location" or "address" as the source.
func (r *RegisterRequest) LocationValue() string {
	if r.Location != "" {
		return r.Location
	}
	return r.Address
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
	Confirmation    string `json:"new_password_confirmation,omitempty"`
}

// Old returns old_password, accepting current_password as an alias.
func (r *ChangePasswordRequest) Old() string {
	if r.OldPassword != "" {
		return r.OldPassword
	}
	return r.CurrentPassword
}

type UpdateProfileRequest struct {
	FirstName       *string  `json:"first_name,omitempty"`
	LastName        *string  `json:"last_name,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Address         *string  `json:"address,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty"`
}

type UserDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse is the success shape shared by register and login.
// Warning and Message only appear on the degraded tiers: tokens minted
// but no session stored, or no tokens at all.
type AuthResponse struct {
	AccessToken  string  `json:"access_token,omitempty"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type,omitempty"`
	ExpiresIn    int     `json:"expires_in,omitempty"`
	User         UserDTO `json:"user"`
	Warning      string  `json:"warning,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// AccessResponse is returned by refresh: a new access token against an
// unchanged session. The refresh token is deliberately not rotated.
type AccessResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int     `json:"expires_in"`
	User        UserDTO `json:"user"`
}

type ProfileDTO struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}
