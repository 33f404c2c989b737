package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
)

const (
	defaultDonorPageSize = 50
	maxDonorPageSize     = 500
	communicationsPage   = 100
)

type ListDonorsFilter struct {
	Status string
	Stage  string
	Tag    string
	Limit  int
	Offset int
}

// DonorService covers donor intake and profile reads.
type DonorService struct {
	donors entity.DonorRepositoryInterface
	comms  entity.CommunicationRepositoryInterface
	clock  Clock
	logger *zap.Logger
}

func NewDonorService(donors entity.DonorRepositoryInterface, comms entity.CommunicationRepositoryInterface, clock Clock, logger *zap.Logger) *DonorService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonorService{donors: donors, comms: comms, clock: clock, logger: logger}
}

func (s *DonorService) Create(ctx context.Context, input CreateDonorInput) (*entity.Donor, error) {
	if errs := ValidateCreateDonorInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	donor, err := entity.NewDonor(
		input.OrganizationID,
		input.Name,
		input.Email,
		input.Phone,
		entity.DonorStage(input.Stage),
		input.Tags,
		input.Interests,
		s.clock.Now(),
	)
	if err != nil {
		return nil, invalid("donor", err.Error())
	}

	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, writeFailed("donor", err)
	}
	s.logger.Info("donor created", zap.String("donor_id", donor.ID), zap.String("organization_id", donor.OrganizationID))
	return donor, nil
}

func (s *DonorService) Get(ctx context.Context, organizationID, donorID string) (*entity.Donor, error) {
	return loadDonor(ctx, s.donors, organizationID, donorID)
}

func (s *DonorService) List(ctx context.Context, organizationID string, f ListDonorsFilter) ([]*entity.Donor, error) {
	filter := entity.DonorFilter{
		Status: entity.DonorStatus(f.Status),
		Stage:  entity.DonorStage(f.Stage),
		Tag:    f.Tag,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	if filter.Status != "" && filter.Status != entity.DonorActive && filter.Status != entity.DonorInactive {
		return nil, invalid("status", "must be ACTIVE or INACTIVE")
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, invalid("stage", "is invalid")
	}
	if filter.Offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultDonorPageSize
	case filter.Limit > maxDonorPageSize:
		filter.Limit = maxDonorPageSize
	}

	donors, err := s.donors.List(ctx, organizationID, filter)
	if err != nil {
		return nil, queryFailed("donors", err)
	}
	if donors == nil {
		donors = []*entity.Donor{}
	}
	return donors, nil
}

// Deactivate is idempotent; donors are never deleted.
func (s *DonorService) Deactivate(ctx context.Context, organizationID, donorID string) (*entity.Donor, error) {
	donor, err := loadDonor(ctx, s.donors, organizationID, donorID)
	if err != nil {
		return nil, err
	}
	if !donor.Active() {
		return donor, nil
	}
	donor.Deactivate(s.clock.Now())
	if err := s.donors.UpdateStatus(ctx, donor.ID, donor.Status); err != nil {
		return nil, writeFailed("donor status", err)
	}
	return donor, nil
}

func (s *DonorService) ListCommunications(ctx context.Context, organizationID, donorID string) ([]*entity.Communication, error) {
	donor, err := loadDonor(ctx, s.donors, organizationID, donorID)
	if err != nil {
		return nil, err
	}
	comms, err := s.comms.ListByDonor(ctx, donor.ID, communicationsPage)
	if err != nil {
		return nil, queryFailed("communications", err)
	}
	if comms == nil {
		comms = []*entity.Communication{}
	}
	return comms, nil
}
