package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Upsert keeps the first capture's values for fields the new request leaves empty.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (email, name, phone, organization, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			organization = COALESCE(EXCLUDED.organization, leads.organization),
			updated_at = NOW()
		RETURNING id, created_at, updated_at, status
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.Email,
		nullString(lead.Name),
		nullString(lead.Phone),
		nullString(lead.Organization),
	).Scan(
		&lead.ID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&lead.Status,
	)
}
