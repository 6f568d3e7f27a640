// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawmart/go-backend/internal/core"
)

// UserInfo is the auth core's view of a user record. Optional columns
// are pointers; PasswordHash is nil for federated-only accounts.
type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	PasswordHash *string
	GoogleID     *string
	Phone        *string
	Address      *string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// NewUser is the insert payload for registration. Phone and Address
// ride along in the same insert when the role is customer.
type NewUser struct {
	Email        string
	PasswordHash *string
	GoogleID     *string
	FirstName    string
	LastName     string
	Role         string
	Phone        string
	Address      string
}

// ProfileUpdate carries only the allow-listed mutable fields. Nil
// means "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

func (p *ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil &&
		p.Phone == nil && p.Address == nil
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type ProfileProvider interface {
	CreateProfile(ctx context.Context, userID, phone, location string) error
}

// PasswordHasher abstracts password hashing. Verify's rehash result is
// non-empty when the stored hash was made with stale cost parameters
// and should be replaced with the returned value.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hash *string) (valid bool, rehash string, err error)
}

type Service struct {
	sessions  Repository
	users     UserProvider
	profiles  ProfileProvider
	hasher    PasswordHasher
	issuer    *TokenIssuer
	validator *Validator
	logger    *slog.Logger
}

func NewService(
	sessions Repository,
	users UserProvider,
	profiles ProfileProvider,
	hasher PasswordHasher,
	issuer *TokenIssuer,
	validator *Validator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:  sessions,
		users:     users,
		profiles:  profiles,
		hasher:    hasher,
		issuer:    issuer,
		validator: validator,
		logger:    logger,
	}
}

// NormalizeEmail applies the one normalization this service uses
// everywhere: trim plus lower-case ASCII fold. Uniqueness and login
// lookups both go through it, so comparison never depends on storage
// collation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the payload, creates the user and immediately
// logs it in. The customer-profile insert is best-effort: its failure
// is logged and swallowed, registration still succeeds.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	if errs := s.validator.ValidateRegistration(req); errs.Fails() {
		return nil, NewValidationError(errs)
	}

	email := NormalizeEmail(req.Email)

	// Fast-fail UX pre-check only. The unique index on users.email is
	// the authoritative guard; a losing race surfaces below as a
	// duplicate-key error from the insert.
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, s.registrationFault(err, email, req.Role)
	}
	if exists {
		return nil, ErrEmailExists
	}

	newUser := NewUser{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	if req.GoogleID != "" {
		googleID := req.GoogleID
		newUser.GoogleID = &googleID
	}
	if req.Password != "" {
		hash, hashErr := s.hasher.Hash(req.Password)
		if hashErr != nil {
			return nil, s.registrationFault(hashErr, email, req.Role)
		}
		newUser.PasswordHash = &hash
	}
	if req.Role == RoleCustomer {
		newUser.Phone = req.Phone
		newUser.Address = req.LocationValue()
	}

	created, err := s.users.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, s.registrationFault(err, email, req.Role)
	}

	// Defensive read-after-write. A missing row here is a storage
	// inconsistency and must not be silently swallowed.
	user, err := s.users.GetByID(ctx, created.ID)
	if err != nil {
		s.logger.Error("registered user missing on re-fetch",
			"user_id", created.ID,
			"email", email,
			"error", err,
		)
		return nil, ErrRegistrationFailed
	}

	if req.Role == RoleCustomer && req.Phone != "" && req.LocationValue() != "" {
		if profileErr := s.profiles.CreateProfile(
			ctx, user.ID, req.Phone, req.LocationValue(),
		); profileErr != nil {
			s.logger.Warn("customer profile creation failed, continuing",
				"user_id", user.ID,
				"error", profileErr,
			)
		}
	}

	return s.createAuthResponse(ctx, user, userAgent, ipAddress), nil
}

// Login verifies credentials and optionally pins the caller-declared
// role. "No such user" and "deactivated" are indistinguishable to the
// caller.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	if errs := s.validator.ValidateLogin(req); errs.Fails() {
		return nil, NewValidationError(errs)
	}

	email := NormalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.Verify(req.Password, nil)
			return nil, ErrInvalidEmail
		}
		s.logger.Error("login lookup failed", "email", email, "ip", ipAddress, "error", err)
		return nil, ErrLoginFailed
	}

	if !user.IsActive {
		return nil, ErrInvalidEmail
	}

	if req.Role != "" && req.Role != user.Role {
		return nil, ErrInvalidRole
	}

	valid, rehash, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "email", email, "ip", ipAddress, "error", err)
		return nil, ErrLoginFailed
	}
	if !valid {
		s.logger.Warn("invalid credentials", "email", email, "ip", ipAddress)
		return nil, ErrInvalidCredentials
	}

	// Upgrade hashes minted with stale cost parameters. Best-effort:
	// the old hash still verifies, so a failed write cannot block login.
	if rehash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, rehash); err != nil {
			s.logger.Warn("password rehash persistence failed", "user_id", user.ID, "error", err)
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("last-login update failed", "user_id", user.ID, "error", err)
		return nil, ErrLoginFailed
	}

	return s.createAuthResponse(ctx, user, userAgent, ipAddress), nil
}

// createAuthResponse mints the token pair and persists the session,
// degrading in tiers rather than hard-failing on secondary
// persistence problems: full success, then tokens without a stored
// session (with a warning), then user-only (with a message). All three
// tiers are success-shaped; tokens never accompany an error.
func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress string,
) *AuthResponse {
	if resp, err := s.fullAuthResponse(ctx, user, userAgent, ipAddress); err == nil {
		return resp
	} else {
		s.logger.Error("session persistence failed, falling back to unstored tokens",
			"user_id", user.ID,
			"error", err,
		)
	}

	if resp, err := s.tokensWithoutSession(user); err == nil {
		return resp
	} else {
		s.logger.Error("fallback token minting failed, degrading to user-only response",
			"user_id", user.ID,
			"error", err,
		)
	}

	return &AuthResponse{
		User:    toUserDTO(user),
		Message: "account ready, but automatic sign-in is unavailable. Please log in manually.",
	}
}

func (s *Service) fullAuthResponse(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	accessToken, err := s.issuer.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshData, err := s.issuer.CreateRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshData.Token,
		TokenType:    "Bearer",
		ExpiresIn:    s.issuer.AccessTTLSeconds(),
		User:         toUserDTO(user),
	}, nil
}

func (s *Service) tokensWithoutSession(user *UserInfo) (*AuthResponse, error) {
	accessToken, err := s.issuer.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshData, err := s.issuer.CreateRefreshToken()
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshData.Token,
		TokenType:    "Bearer",
		ExpiresIn:    s.issuer.AccessTTLSeconds(),
		User:         toUserDTO(user),
		Warning:      "session could not be stored; re-login if you experience issues",
	}, nil
}

// Refresh exchanges a stored refresh token for a new access token.
// The refresh token itself is not rotated: the session row stays as
// issued until logout or expiry.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*AccessResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	session, err := s.sessions.FindByToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("session lookup failed", "token_prefix", tokenPrefix(refreshToken), "error", err)
		return nil, ErrRefreshFailed
	}

	// Expiry is enforced lazily, at lookup.
	if session.IsExpired() {
		//nolint:errcheck // opportunistic cleanup of the dead row
		_ = s.sessions.DeleteByToken(ctx, tokenHash)
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// A session pointing at a missing user is a data-integrity
			// fault, not a bad request.
			s.logger.Error("session references missing user",
				"user_id", session.UserID,
				"session_id", session.ID,
			)
			return nil, ErrUserNotFound
		}
		s.logger.Error("user lookup failed during refresh", "user_id", session.UserID, "error", err)
		return nil, ErrRefreshFailed
	}

	if !user.IsActive {
		// Revoke on detection: the deactivated account's session is
		// deleted as part of returning the error.
		//nolint:errcheck // revocation is best-effort; the refresh fails either way
		_ = s.sessions.DeleteByToken(ctx, tokenHash)
		return nil, ErrAccountDeactivated
	}

	accessToken, err := s.issuer.CreateAccessToken(user)
	if err != nil {
		s.logger.Error("access token minting failed during refresh", "user_id", user.ID, "error", err)
		return nil, ErrRefreshFailed
	}

	return &AccessResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.issuer.AccessTTLSeconds(),
		User:        toUserDTO(user),
	}, nil
}

// Logout deletes the session for one refresh token. It never errors
// outward: logout must not block a client from clearing local state.
func (s *Service) Logout(ctx context.Context, refreshToken string) bool {
	tokenHash := core.HashToken(refreshToken)

	session, err := s.sessions.FindByToken(ctx, tokenHash)
	if err != nil {
		return false
	}

	if err := s.sessions.DeleteByToken(ctx, tokenHash); err != nil {
		s.logger.Warn("logout delete failed", "user_id", session.UserID, "error", err)
		return false
	}

	s.logger.Info("session logged out", "user_id", session.UserID)
	return true
}

// LogoutFromAllDevices removes every session for the user. Same
// best-effort, never-throwing contract as Logout.
func (s *Service) LogoutFromAllDevices(ctx context.Context, userID string) bool {
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		s.logger.Warn("logout-all failed", "user_id", userID, "error", err)
		return false
	}
	return true
}

func (s *Service) GetUserProfile(
	ctx context.Context,
	userID string,
) (*ProfileDTO, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toProfileDTO(user), nil
}

// UpdateUserProfile persists only the allow-listed fields. Anything
// else in the payload is silently dropped, which keeps role and
// is_active out of reach of this endpoint.
func (s *Service) UpdateUserProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*ProfileDTO, error) {
	if errs := s.validator.ValidateProfileUpdate(req); errs.Fails() {
		return nil, NewValidationError(errs)
	}

	update := ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	if !update.IsEmpty() {
		if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	return s.GetUserProfile(ctx, userID)
}

// ChangePassword verifies the old password, stores the new hash and
// revokes every session so stolen refresh tokens die with the old
// password.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	if errs := s.validator.ValidatePasswordChange(req); errs.Fails() {
		return NewValidationError(errs)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	valid, _, err := s.hasher.Verify(req.Old(), user.PasswordHash)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	s.LogoutFromAllDevices(ctx, userID)
	return nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	sessions, err := s.sessions.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, SessionInfo{
			ID:        sess.ID,
			UserAgent: sess.UserAgent,
			IPAddress: sess.IPAddress,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}

	return infos, nil
}

// PurgeExpiredSessions sweeps session rows whose expiry has passed.
// Expired sessions are already rejected at lookup, this reclaims the
// storage.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		s.logger.Info("purged expired sessions", "count", purged)
	}

	return purged, nil
}

func (s *Service) registrationFault(err error, email, role string) error {
	s.logger.Error("registration failed",
		"email", email,
		"role", role,
		"error", err,
	)
	return ErrRegistrationFailed
}

func toUserDTO(user *UserInfo) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

func toProfileDTO(user *UserInfo) *ProfileDTO {
	return &ProfileDTO{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
	}
}

// tokenPrefix keeps log lines useful without leaking a full secret.
func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
