package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type CommunicationRepository struct {
	DB *sql.DB
}

func NewCommunicationRepository(db *sql.DB) *CommunicationRepository {
	return &CommunicationRepository{DB: db}
}

const communicationColumns = `id, organization_id, donor_id, donation_id, type, direction, status, subject, content,
	external_id, meeting_url, scheduled_at, sent_at, created_at, updated_at`

func (r *CommunicationRepository) Create(ctx context.Context, c *entity.Communication) error {
	query := `
		INSERT INTO communications (id, organization_id, donor_id, donation_id, type, direction, status, subject, content,
		                            external_id, meeting_url, scheduled_at, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OrganizationID, c.DonorID, c.DonationID, c.Type, c.Direction, c.Status, c.Subject, c.Content,
		c.ExternalID, c.MeetingURL, c.ScheduledAt, c.SentAt, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CommunicationRepository) FindByID(ctx context.Context, id string) (*entity.Communication, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+communicationColumns+` FROM communications WHERE id = $1`, id)
	c, err := scanCommunication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCommunicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ClaimDelivery moves a DRAFT row to SENDING. Only one caller can win the
// claim; the others get ErrCommunicationNotFound.
func (r *CommunicationRepository) ClaimDelivery(ctx context.Context, c *entity.Communication) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE communications
		SET status = 'SENDING', updated_at = $2
		WHERE id = $1 AND status = 'DRAFT'
	`, c.ID, c.UpdatedAt)
	return expectOneRow(res, err, entity.ErrCommunicationNotFound)
}

// UpdateDelivery persists the outcome of a send. Only SENDING rows move, which
// keeps SENT and FAILED final.
func (r *CommunicationRepository) UpdateDelivery(ctx context.Context, c *entity.Communication) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE communications
		SET status = $2, external_id = $3, sent_at = $4, updated_at = $5
		WHERE id = $1 AND status = 'SENDING'
	`, c.ID, c.Status, c.ExternalID, c.SentAt, c.UpdatedAt)
	return expectOneRow(res, err, entity.ErrCommunicationNotFound)
}

func (r *CommunicationRepository) ListByDonor(ctx context.Context, donorID string, limit int) ([]*entity.Communication, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+communicationColumns+` FROM communications
		WHERE donor_id = $1
		ORDER BY COALESCE(sent_at, created_at) DESC, id
		LIMIT $2`, donorID, limitOrAll(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Communication
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindLatestByDonor returns nil, nil when the donor has no communications.
func (r *CommunicationRepository) FindLatestByDonor(ctx context.Context, donorID string) (*entity.Communication, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+communicationColumns+` FROM communications
		WHERE donor_id = $1
		ORDER BY COALESCE(sent_at, created_at) DESC, id
		LIMIT 1`, donorID)
	c, err := scanCommunication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *CommunicationRepository) CountByDonor(ctx context.Context, donorID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM communications WHERE donor_id = $1`, donorID).Scan(&n)
	return n, err
}

func scanCommunication(row rowScanner) (*entity.Communication, error) {
	var (
		c                   entity.Communication
		donationID          sql.NullString
		scheduledAt, sentAt sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.DonorID, &donationID, &c.Type, &c.Direction, &c.Status, &c.Subject, &c.Content,
		&c.ExternalID, &c.MeetingURL, &scheduledAt, &sentAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if donationID.Valid {
		id := donationID.String
		c.DonationID = &id
	}
	c.ScheduledAt = timePtr(scheduledAt)
	c.SentAt = timePtr(sentAt)
	return &c, nil
}
