package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quorahq/accountserver/types"
)

// SessionRepository handles persistence for issued access tokens.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session types.Session) (types.Session, error) {
	const query = `
		INSERT INTO user_auth_tokens (user_id, access_token, login_at, expires_at, logout_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		session.UserID,
		session.AccessToken,
		session.LoginAt,
		session.ExpiresAt,
		session.LogoutAt,
	).Scan(&session.ID); err != nil {
		if mapped := translateUniqueViolation(err); mapped != err {
			return types.Session{}, mapped
		}
		return types.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// GetByToken returns the session with the exact access token, regardless of
// whether it is still active.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT id, user_id, access_token, login_at, expires_at, logout_at
		FROM user_auth_tokens
		WHERE access_token = $1`
	var (
		session  types.Session
		logoutAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.LoginAt,
		&session.ExpiresAt,
		&logoutAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, fmt.Errorf("select session: %w", err)
	}
	if logoutAt.Valid {
		at := logoutAt.Time
		session.LogoutAt = &at
	}
	return session, nil
}

// MarkLoggedOut stamps the session's logout time.
func (r *SessionRepository) MarkLoggedOut(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE user_auth_tokens SET logout_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
