package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CommunicationType string

const (
	CommEmail     CommunicationType = "EMAIL"
	CommPhoneCall CommunicationType = "PHONE_CALL"
	CommMeeting   CommunicationType = "MEETING"
	CommLetter    CommunicationType = "LETTER"
	CommSMS       CommunicationType = "SMS"
	CommOther     CommunicationType = "OTHER"
)

func (t CommunicationType) Valid() bool {
	switch t {
	case CommEmail, CommPhoneCall, CommMeeting, CommLetter, CommSMS, CommOther:
		return true
	}
	return false
}

type CommunicationDirection string

const (
	Inbound  CommunicationDirection = "INBOUND"
	Outbound CommunicationDirection = "OUTBOUND"
)

type CommunicationStatus string

const (
	CommDraft   CommunicationStatus = "DRAFT"
	CommSending CommunicationStatus = "SENDING"
	CommSent    CommunicationStatus = "SENT"
	CommFailed  CommunicationStatus = "FAILED"
)

func (s CommunicationStatus) Valid() bool {
	return s == CommDraft || s == CommSending || s == CommSent || s == CommFailed
}

type Communication struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	DonorID        string                 `json:"donor_id"`
	DonationID     *string                `json:"donation_id,omitempty"`
	Type           CommunicationType      `json:"type"`
	Direction      CommunicationDirection `json:"direction"`
	Status         CommunicationStatus    `json:"status"`
	Subject        string                 `json:"subject,omitempty"`
	Content        string                 `json:"content,omitempty"`
	ExternalID     string                 `json:"external_id,omitempty"`
	MeetingURL     string                 `json:"meeting_url,omitempty"`
	ScheduledAt    *time.Time             `json:"scheduled_at,omitempty"`
	SentAt         *time.Time             `json:"sent_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func NewCommunication(organizationID, donorID string, donationID *string, typ CommunicationType, direction CommunicationDirection, subject, content string, scheduledAt *time.Time, now time.Time) (*Communication, error) {
	if direction == "" {
		direction = Outbound
	}
	c := &Communication{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		DonorID:        donorID,
		DonationID:     donationID,
		Type:           typ,
		Direction:      direction,
		Status:         CommDraft,
		Subject:        subject,
		Content:        content,
		ScheduledAt:    scheduledAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !c.Type.Valid() {
		return nil, fmt.Errorf("type %q is invalid", typ)
	}
	if c.Direction != Inbound && c.Direction != Outbound {
		return nil, fmt.Errorf("direction %q is invalid", direction)
	}
	return c, nil
}

// BeginDelivery claims a DRAFT for an outbound send.
func (c *Communication) BeginDelivery(at time.Time) error {
	if c.Status != CommDraft {
		return fmt.Errorf("%w: communication %s -> %s", ErrInvalidTransition, c.Status, CommSending)
	}
	c.Status = CommSending
	c.UpdatedAt = at
	return nil
}

func (c *Communication) pending() bool {
	return c.Status == CommDraft || c.Status == CommSending
}

// MarkSent and MarkFailed move a DRAFT or SENDING communication to its final
// state; SENT and FAILED never change again.
func (c *Communication) MarkSent(externalID string, at time.Time) error {
	if !c.pending() {
		return fmt.Errorf("%w: communication %s -> %s", ErrInvalidTransition, c.Status, CommSent)
	}
	c.Status = CommSent
	c.ExternalID = externalID
	c.SentAt = &at
	c.UpdatedAt = at
	return nil
}

func (c *Communication) MarkFailed(at time.Time) error {
	if !c.pending() {
		return fmt.Errorf("%w: communication %s -> %s", ErrInvalidTransition, c.Status, CommFailed)
	}
	c.Status = CommFailed
	c.UpdatedAt = at
	return nil
}

// ContactTime is SentAt when the communication went out, CreatedAt otherwise.
func (c *Communication) ContactTime() time.Time {
	if c.SentAt != nil {
		return *c.SentAt
	}
	return c.CreatedAt
}

type CommunicationRepositoryInterface interface {
	Create(ctx context.Context, c *Communication) error
	FindByID(ctx context.Context, id string) (*Communication, error)
	ClaimDelivery(ctx context.Context, c *Communication) error
	UpdateDelivery(ctx context.Context, c *Communication) error
	ListByDonor(ctx context.Context, donorID string, limit int) ([]*Communication, error)
	FindLatestByDonor(ctx context.Context, donorID string) (*Communication, error)
	CountByDonor(ctx context.Context, donorID string) (int, error)
}
