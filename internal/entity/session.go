package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session backs a refresh-token chain. ExpiresAt slides on every refresh but
// never passes CreatedAt + the configured maximum session age.
type Session struct {
	ID               string
	UserID           string
	OrganizationID   string
	RefreshJTI       string
	RefreshTokenHash string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	LastSeenAt       *time.Time
	RevokedAt        *time.Time
}

func NewSession(userID, organizationID string, now time.Time) *Session {
	return &Session{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: organizationID,
		CreatedAt:      now,
	}
}

func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// SlidingExpiry returns min(now+ttl, CreatedAt+maxAge).
func (s *Session) SlidingExpiry(now time.Time, ttl, maxAge time.Duration) time.Time {
	next := now.Add(ttl)
	hardCap := s.CreatedAt.Add(maxAge)
	if next.After(hardCap) {
		return hardCap
	}
	return next
}

func (s *Session) Usable(now time.Time) bool {
	return !s.Revoked() && now.Before(s.ExpiresAt)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Rotate(ctx context.Context, id, jti, refreshTokenHash string, expiresAt, seenAt time.Time) error
	Revoke(ctx context.Context, id string, at time.Time) error
}
