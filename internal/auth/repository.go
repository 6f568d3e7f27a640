// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pawmart/go-backend/internal/core"
)

// Repository persists refresh-token sessions. A refresh token string,
// once issued, maps to exactly one user until its row is deleted;
// multiple concurrent sessions per user are allowed.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByToken(ctx context.Context, tokenHash string) (*Session, error)
	DeleteByToken(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	GetActiveForUser(ctx context.Context, userID string) ([]Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, token_hash, expires_at, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.UserAgent,
		session.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByToken(
	ctx context.Context,
	tokenHash string,
) (*Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at,
		       user_agent, ip_address
		FROM sessions
		WHERE token_hash = $1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &session, nil
}

func (r *repository) DeleteByToken(
	ctx context.Context,
	tokenHash string,
) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteAllForUser(
	ctx context.Context,
	userID string,
) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	return nil
}

func (r *repository) GetActiveForUser(
	ctx context.Context,
	userID string,
) ([]Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at,
		       user_agent, ip_address
		FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("get active sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}
