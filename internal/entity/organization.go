package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOrganization(name, timezone string, now time.Time) (*Organization, error) {
	o := &Organization{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Timezone:  timezone,
		CreatedAt: now,
	}
	if o.Name == "" {
		return nil, errors.New("organization name is required")
	}
	if _, err := time.LoadLocation(o.Timezone); err != nil {
		return nil, errors.New("timezone is invalid")
	}
	return o, nil
}

// Location falls back to UTC when the stored zone cannot be loaded.
func (o *Organization) Location() *time.Location {
	if o == nil || o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type OrganizationRepositoryInterface interface {
	Create(ctx context.Context, o *Organization) error
	FindByID(ctx context.Context, id string) (*Organization, error)
	Delete(ctx context.Context, id string) error
}
