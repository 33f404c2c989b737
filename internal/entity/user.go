package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// User is a staff member who signs in to manage an organization's donors.
type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewUser(organizationID, name, email, passwordHash string, role UserRole, now time.Time) *User {
	return &User{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// LoginAttemptRepositoryInterface backs the failed-login lockout.
type LoginAttemptRepositoryInterface interface {
	RecordFailure(ctx context.Context, email, ip string, at time.Time) error
	CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error)
	Clear(ctx context.Context, email string) error
}
