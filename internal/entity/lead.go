package entity

import (
	"context"
	"time"
)

// Lead is a demo request captured from the marketing landing page.
type Lead struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Status       string    `json:"status"` // PENDING, CONTACTED, CONVERTED
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *Lead) error
}
