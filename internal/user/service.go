// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pawmart/go-backend/internal/auth"
	"github.com/pawmart/go-backend/internal/core"
)

// Service owns user persistence and adapts it to the account
// operations the auth layer depends on.
type Service struct {
	repo     Repository
	profiles ProfileRepository
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	profiles ProfileRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		logger:   logger,
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *Service) Create(
	ctx context.Context,
	payload auth.NewUser,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(payload.Email),
		PasswordHash: payload.PasswordHash,
		GoogleID:     payload.GoogleID,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Role:         payload.Role,
		IsActive:     true,
	}

	if payload.Phone != "" {
		phone := payload.Phone
		user.Phone = &phone
	}
	if payload.Address != "" {
		address := payload.Address
		user.Address = &address
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	id string,
	update auth.ProfileUpdate,
) error {
	if err := s.repo.UpdateProfile(
		ctx, id,
		update.FirstName, update.LastName,
		update.Phone, update.Address,
	); err != nil {
		return err
	}

	// Customers carry the phone on both the user row and their profile;
	// keep the profile copy in step. Accounts without a profile row
	// have nothing to sync, and a failed sync never fails the update.
	if update.Phone != nil {
		err := s.profiles.UpdateProfileFields(ctx, id, update.Phone, nil)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("customer profile phone sync failed",
				"user_id", id,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) UpdateLastLogin(ctx context.Context, id string) error {
	return s.repo.UpdateLastLogin(ctx, id)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) CreateProfile(
	ctx context.Context,
	userID, phone, location string,
) error {
	return s.profiles.CreateProfile(ctx, userID, phone, location)
}

func (s *Service) GetCustomerProfile(
	ctx context.Context,
	userID string,
) (*CustomerProfile, error) {
	return s.profiles.GetProfileByUserID(ctx, userID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) (*ListUsersResponse, error) {
	params.Normalize()

	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return &ListUsersResponse{
		Users:      responses,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set user active: %w", err)
	}

	s.logger.Info("user active state changed",
		"user_id", id,
		"active", active)

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		GoogleID:     u.GoogleID,
		Phone:        u.Phone,
		Address:      u.Address,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}

var (
	_ auth.UserProvider    = (*Service)(nil)
	_ auth.ProfileProvider = (*Service)(nil)
)
