package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, organization_id, name, email, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.OrganizationID, u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

const userColumns = `id, organization_id, name, email, password_hash, role, active, created_at, updated_at`

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var u entity.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.OrganizationID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type LoginAttemptRepository struct {
	DB *sql.DB
}

func NewLoginAttemptRepository(db *sql.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{DB: db}
}

func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, email, ip string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO login_attempts (email, ip, attempted_at) VALUES ($1, $2, $3)`,
		email, ip, at,
	)
	return err
}

func (r *LoginAttemptRepository) CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_attempts WHERE email = $1 AND attempted_at >= $2`,
		email, since,
	).Scan(&n)
	return n, err
}

func (r *LoginAttemptRepository) Clear(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM login_attempts WHERE email = $1`, email)
	return err
}
