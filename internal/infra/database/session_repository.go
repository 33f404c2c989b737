package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, organization_id, refresh_jti, refresh_token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, s.UserID, s.OrganizationID, s.RefreshJTI, s.RefreshTokenHash, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	query := `
		SELECT id, user_id, organization_id, refresh_jti, refresh_token_hash, expires_at, created_at, last_seen_at, revoked_at
		FROM sessions WHERE id = $1
	`
	var (
		s                   entity.Session
		lastSeen, revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.OrganizationID, &s.RefreshJTI, &s.RefreshTokenHash,
		&s.ExpiresAt, &s.CreatedAt, &lastSeen, &revokedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.LastSeenAt = timePtr(lastSeen)
	s.RevokedAt = timePtr(revokedAt)
	return &s, nil
}

// Rotate swaps in the new refresh token. Revoked sessions are left untouched.
func (r *SessionRepository) Rotate(ctx context.Context, id, jti, refreshTokenHash string, expiresAt, seenAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_jti = $2, refresh_token_hash = $3, expires_at = $4, last_seen_at = $5
		WHERE id = $1 AND revoked_at IS NULL
	`, id, jti, refreshTokenHash, expiresAt, seenAt)
	return expectOneRow(res, err, entity.ErrSessionNotFound)
}

func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`, id, at)
	return expectOneRow(res, err, entity.ErrSessionNotFound)
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func expectOneRow(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
