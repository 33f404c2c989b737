package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCurrency = "USD"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCheck        PaymentMethod = "CHECK"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentPix          PaymentMethod = "PIX"
	PaymentOther        PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentCreditCard, PaymentBankTransfer, PaymentPix, PaymentOther:
		return true
	}
	return false
}

type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationFailed    DonationStatus = "FAILED"
	DonationRefunded  DonationStatus = "REFUNDED"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed, DonationRefunded:
		return true
	}
	return false
}

// donationTransitions: a COMPLETED gift is immutable except for a refund.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationPending:   {DonationCompleted, DonationFailed},
	DonationCompleted: {DonationRefunded},
}

type Donation struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	DonorID        string         `json:"donor_id"`
	CampaignID     *string        `json:"campaign_id,omitempty"`
	AmountCents    int64          `json:"amount_cents"` // minor units of Currency
	Currency       string         `json:"currency"`
	DonatedAt      time.Time      `json:"donated_at"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	Status         DonationStatus `json:"status"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewDonation(organizationID, donorID string, campaignID *string, amountCents int64, currency string, donatedAt time.Time, method PaymentMethod, status DonationStatus, notes string, now time.Time) (*Donation, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if status == "" {
		status = DonationCompleted
	}
	d := &Donation{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		DonorID:        donorID,
		CampaignID:     campaignID,
		AmountCents:    amountCents,
		Currency:       strings.ToUpper(currency),
		DonatedAt:      donatedAt,
		PaymentMethod:  method,
		Status:         status,
		Notes:          notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Donation) Validate() error {
	if d.DonorID == "" {
		return fmt.Errorf("donor_id is required")
	}
	if d.AmountCents <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if len(d.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter ISO code")
	}
	if !d.PaymentMethod.Valid() {
		return fmt.Errorf("payment_method %q is invalid", d.PaymentMethod)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("status %q is invalid", d.Status)
	}
	return nil
}

func (d *Donation) Completed() bool {
	return d.Status == DonationCompleted
}

// TransitionTo moves the donation to next if the status table allows it.
func (d *Donation) TransitionTo(next DonationStatus, now time.Time) error {
	for _, allowed := range donationTransitions[d.Status] {
		if allowed == next {
			d.Status = next
			d.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("%w: donation %s -> %s", ErrInvalidTransition, d.Status, next)
}

type DonationFilter struct {
	OrganizationID string
	DonorID        string
	CampaignID     string
	From           *time.Time
	To             *time.Time
	// Statuses empty means every status.
	Statuses []DonationStatus
	Limit    int
}

type DonationTotals struct {
	SumCents int64
	Count    int
}

type DonationRepositoryInterface interface {
	Create(ctx context.Context, d *Donation) error
	FindByID(ctx context.Context, id string) (*Donation, error)
	UpdateStatus(ctx context.Context, id string, status DonationStatus) error
	List(ctx context.Context, filter DonationFilter) ([]*Donation, error)
	Totals(ctx context.Context, filter DonationFilter) (DonationTotals, error)
	ListCompletedByDonor(ctx context.Context, donorID string) ([]*Donation, error)
	ListCompletedByOrganization(ctx context.Context, organizationID string, before time.Time) ([]*Donation, error)
}
