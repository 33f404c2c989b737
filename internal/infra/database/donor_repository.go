package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type DonorRepository struct {
	DB *sql.DB
}

func NewDonorRepository(db *sql.DB) *DonorRepository {
	return &DonorRepository{DB: db}
}

const donorColumns = `id, organization_id, name, email, phone, stage, status, tags, interests,
	total_given_cents, gifts_count, first_gift_date, last_gift_date, created_at, updated_at`

func (r *DonorRepository) Create(ctx context.Context, d *entity.Donor) error {
	interests, err := marshalInterests(d.Interests)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO donors (id, organization_id, name, email, phone, stage, status, tags, interests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.DB.ExecContext(ctx, query,
		d.ID, d.OrganizationID, d.Name, d.Email, d.Phone, d.Stage, d.Status,
		pq.Array(d.Tags), string(interests), d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DonorRepository) FindByID(ctx context.Context, id string) (*entity.Donor, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+donorColumns+` FROM donors WHERE id = $1`, id)
	d, err := scanDonor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrDonorNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns the organization's donors by name. A zero Limit returns all of them.
func (r *DonorRepository) List(ctx context.Context, organizationID string, f entity.DonorFilter) ([]*entity.Donor, error) {
	where := []string{"organization_id = $1"}
	args := []any{organizationID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Stage != "" {
		args = append(args, f.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	args = append(args, limitOrAll(f.Limit), f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM donors WHERE %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		donorColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donors []*entity.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, err
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

func (r *DonorRepository) ListIDsByOrganization(ctx context.Context, organizationID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM donors WHERE organization_id = $1`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *DonorRepository) UpdateStatus(ctx context.Context, id string, status entity.DonorStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE donors SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return expectOneRow(res, err, entity.ErrDonorNotFound)
}

func (r *DonorRepository) UpdateAggregates(ctx context.Context, id string, a entity.DonorAggregates) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE donors
		SET total_given_cents = $2, gifts_count = $3, first_gift_date = $4, last_gift_date = $5, updated_at = NOW()
		WHERE id = $1
	`, id, a.TotalGivenCents, a.GiftsCount, a.FirstGiftDate, a.LastGiftDate)
	return expectOneRow(res, err, entity.ErrDonorNotFound)
}

// ListStaleAggregates finds donors whose stored aggregates disagree with their
// COMPLETED donations, least recently updated first.
func (r *DonorRepository) ListStaleAggregates(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT d.id
		FROM donors d
		LEFT JOIN (
			SELECT donor_id, SUM(amount_cents) AS total, COUNT(*) AS gifts,
			       MIN(donated_at) AS first_gift, MAX(donated_at) AS last_gift
			FROM donations
			WHERE status = 'COMPLETED'
			GROUP BY donor_id
		) l ON l.donor_id = d.id
		WHERE d.total_given_cents <> COALESCE(l.total, 0)
		   OR d.gifts_count <> COALESCE(l.gifts, 0)
		   OR d.first_gift_date IS DISTINCT FROM l.first_gift
		   OR d.last_gift_date IS DISTINCT FROM l.last_gift
		ORDER BY d.updated_at
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*entity.Donor, error) {
	var (
		d         entity.Donor
		tags      pq.StringArray
		interests []byte
		first     sql.NullTime
		last      sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.OrganizationID, &d.Name, &d.Email, &d.Phone, &d.Stage, &d.Status, &tags, &interests,
		&d.TotalGivenCents, &d.GiftsCount, &first, &last, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Tags = []string(tags)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &d.Interests); err != nil {
			return nil, fmt.Errorf("decode interests of donor %s: %w", d.ID, err)
		}
	}
	d.FirstGiftDate = timePtr(first)
	d.LastGiftDate = timePtr(last)
	return &d, nil
}

func marshalInterests(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
