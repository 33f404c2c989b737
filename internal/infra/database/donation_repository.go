package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type DonationRepository struct {
	DB *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{DB: db}
}

const donationColumns = `id, organization_id, donor_id, campaign_id, amount_cents, currency, donated_at,
	payment_method, status, notes, created_at, updated_at`

func (r *DonationRepository) Create(ctx context.Context, d *entity.Donation) error {
	query := `
		INSERT INTO donations (id, organization_id, donor_id, campaign_id, amount_cents, currency, donated_at,
		                       payment_method, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID, d.OrganizationID, d.DonorID, d.CampaignID, d.AmountCents, d.Currency, d.DonatedAt,
		d.PaymentMethod, d.Status, d.Notes, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DonationRepository) FindByID(ctx context.Context, id string) (*entity.Donation, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DonationRepository) UpdateStatus(ctx context.Context, id string, status entity.DonationStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE donations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return expectOneRow(res, err, entity.ErrDonationNotFound)
}

// List returns matching donations newest first.
func (r *DonationRepository) List(ctx context.Context, f entity.DonationFilter) ([]*entity.Donation, error) {
	where, args := donationWhere(f)
	args = append(args, limitOrAll(f.Limit))
	query := fmt.Sprintf(`SELECT %s FROM donations WHERE %s ORDER BY donated_at DESC, id LIMIT $%d`,
		donationColumns, where, len(args))
	return r.query(ctx, query, args...)
}

func (r *DonationRepository) Totals(ctx context.Context, f entity.DonationFilter) (entity.DonationTotals, error) {
	where, args := donationWhere(f)
	var t entity.DonationTotals
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM donations WHERE `+where, args...,
	).Scan(&t.SumCents, &t.Count)
	return t, err
}

// ListCompletedByDonor is ordered by gift date, newest first.
func (r *DonationRepository) ListCompletedByDonor(ctx context.Context, donorID string) ([]*entity.Donation, error) {
	return r.query(ctx, `SELECT `+donationColumns+` FROM donations
		WHERE donor_id = $1 AND status = 'COMPLETED'
		ORDER BY donated_at DESC, id`, donorID)
}

func (r *DonationRepository) ListCompletedByOrganization(ctx context.Context, organizationID string, before time.Time) ([]*entity.Donation, error) {
	return r.query(ctx, `SELECT `+donationColumns+` FROM donations
		WHERE organization_id = $1 AND status = 'COMPLETED' AND donated_at < $2
		ORDER BY donated_at DESC, id`, organizationID, before)
}

func (r *DonationRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Donation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// donationWhere builds the WHERE clause; From is inclusive, To is inclusive.
func donationWhere(f entity.DonationFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.OrganizationID != "" {
		add("organization_id = $%d", f.OrganizationID)
	}
	if f.DonorID != "" {
		add("donor_id = $%d", f.DonorID)
	}
	if f.CampaignID != "" {
		add("campaign_id = $%d", f.CampaignID)
	}
	if f.From != nil {
		add("donated_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("donated_at <= $%d", *f.To)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", pq.Array(statuses))
	}
	if len(clauses) == 0 {
		return "TRUE", args
	}
	return strings.Join(clauses, " AND "), args
}

func scanDonation(row rowScanner) (*entity.Donation, error) {
	var (
		d        entity.Donation
		campaign sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.OrganizationID, &d.DonorID, &campaign, &d.AmountCents, &d.Currency, &d.DonatedAt,
		&d.PaymentMethod, &d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if campaign.Valid {
		c := campaign.String
		d.CampaignID = &c
	}
	return &d, nil
}
