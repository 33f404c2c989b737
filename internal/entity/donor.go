package entity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	// keep this package free of usecase/infra imports
)

type DonorStage string

const (
	StageNew         DonorStage = "NEW"
	StageCultivation DonorStage = "CULTIVATION"
	StageAskReady    DonorStage = "ASK_READY"
	StageStewardship DonorStage = "STEWARDSHIP"
	StageMajorGift   DonorStage = "MAJOR_GIFT"
	StageLegacy      DonorStage = "LEGACY"
)

func (s DonorStage) Valid() bool {
	switch s {
	case StageNew, StageCultivation, StageAskReady, StageStewardship, StageMajorGift, StageLegacy:
		return true
	}
	return false
}

type DonorStatus string

const (
	DonorActive   DonorStatus = "ACTIVE"
	DonorInactive DonorStatus = "INACTIVE"
)

// Donor is a giving contact of an organization. Aggregates (TotalGivenCents,
// GiftsCount, First/LastGiftDate) are owned by the donation ledger and only
// change through UpdateAggregates.
type Donor struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	Name           string            `json:"name"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Stage          DonorStage        `json:"stage"`
	Status         DonorStatus       `json:"status"`
	Tags           []string          `json:"tags"`
	Interests      map[string]string `json:"interests,omitempty"`

	TotalGivenCents int64      `json:"total_given_cents"`
	GiftsCount      int        `json:"gifts_count"`
	FirstGiftDate   *time.Time `json:"first_gift_date,omitempty"`
	LastGiftDate    *time.Time `json:"last_gift_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDonor builds an ACTIVE donor in stage NEW unless a stage is given.
func NewDonor(organizationID, name, email, phone string, stage DonorStage, tags []string, interests map[string]string, now time.Time) (*Donor, error) {
	if stage == "" {
		stage = StageNew
	}
	d := &Donor{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(name),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Phone:          strings.TrimSpace(phone),
		Stage:          stage,
		Status:         DonorActive,
		Tags:           normalizeTags(tags),
		Interests:      interests,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Donor) Validate() error {
	if d.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			return errors.New("email is invalid")
		}
	}
	if !d.Stage.Valid() {
		return errors.New("stage is invalid")
	}
	return nil
}

// Deactivate is the only way a donor leaves the active list; donors are never deleted.
func (d *Donor) Deactivate(now time.Time) {
	d.Status = DonorInactive
	d.UpdatedAt = now
}

func (d *Donor) Active() bool {
	return d.Status == DonorActive
}

func (d *Donor) ApplyAggregates(a DonorAggregates) {
	d.TotalGivenCents = a.TotalGivenCents
	d.GiftsCount = a.GiftsCount
	d.FirstGiftDate = a.FirstGiftDate
	d.LastGiftDate = a.LastGiftDate
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type DonorFilter struct {
	Status DonorStatus
	Stage  DonorStage
	Tag    string
	Limit  int
	Offset int
}

type DonorRepositoryInterface interface {
	Create(ctx context.Context, d *Donor) error
	FindByID(ctx context.Context, id string) (*Donor, error)
	List(ctx context.Context, organizationID string, filter DonorFilter) ([]*Donor, error)
	ListIDsByOrganization(ctx context.Context, organizationID string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status DonorStatus) error
	UpdateAggregates(ctx context.Context, id string, a DonorAggregates) error
	ListStaleAggregates(ctx context.Context, limit int) ([]string, error)
}
