// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pawmart/go-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(
		ctx context.Context,
		id string,
		firstName, lastName, phone, address *string,
	) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, userID, phone, location string) error
	GetProfileByUserID(ctx context.Context, userID string) (*CustomerProfile, error)
	UpdateProfileFields(ctx context.Context, userID string, phone, location *string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) *repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, google_id, first_name, last_name,
			role, is_active, phone, address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at, updated_at`

	rows, err := r.db.QueryxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.Phone,
		user.Address,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	if rows.Next() {
		if err := rows.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
	}

	return rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, google_id, first_name, last_name,
		       role, is_active, phone, address, last_login_at,
		       created_at, updated_at
		FROM users
		WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `
		SELECT id, email, password_hash, google_id, first_name, last_name,
		       role, is_active, phone, address, last_login_at,
		       created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id string,
	firstName, lastName, phone, address *string,
) error {
	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    phone      = COALESCE($4, phone),
		    address    = COALESCE($5, address),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, firstName, lastName, phone, address)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update last login: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set active: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, email, google_id, first_name, last_name, role,
		       is_active, phone, address, last_login_at,
		       created_at, updated_at
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CreateProfile(
	ctx context.Context,
	userID, phone, location string,
) error {
	query := `
		INSERT INTO customer_profiles (user_id, phone, location)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone,
		    location = EXCLUDED.location,
		    updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID, phone, location); err != nil {
		return fmt.Errorf("create customer profile: %w", err)
	}

	return nil
}

func (r *repository) GetProfileByUserID(
	ctx context.Context,
	userID string,
) (*CustomerProfile, error) {
	query := `
		SELECT user_id, phone, location, created_at, updated_at
		FROM customer_profiles
		WHERE user_id = $1`

	var profile CustomerProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get customer profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer profile: %w", err)
	}

	return &profile, nil
}

func (r *repository) UpdateProfileFields(
	ctx context.Context,
	userID string,
	phone, location *string,
) error {
	query := `
		UPDATE customer_profiles
		SET phone = COALESCE($2, phone),
		    location = COALESCE($3, location),
		    updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, phone, location)
	if err != nil {
		return fmt.Errorf("update customer profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer profile: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update customer profile: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

var (
	_ Repository        = (*repository)(nil)
	_ ProfileRepository = (*repository)(nil)
)
