package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type OrganizationRepository struct {
	DB *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, o *entity.Organization) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO organizations (id, name, timezone, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, o.Timezone, o.CreatedAt,
	)
	return err
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	var o entity.Organization
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, timezone, created_at FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Timezone, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Delete is only used to undo a half-finished registration.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}
