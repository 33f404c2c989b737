package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/donor-crm/internal/entity"
)

// DonorInsights composes the engagement view of a single donor.
type DonorInsights struct {
	donors    entity.DonorRepositoryInterface
	donations entity.DonationRepositoryInterface
	comms     entity.CommunicationRepositoryInterface
	orgs      entity.OrganizationRepositoryInterface
	cache     *InsightCache
	clock     Clock
}

func NewDonorInsights(
	donors entity.DonorRepositoryInterface,
	donations entity.DonationRepositoryInterface,
	comms entity.CommunicationRepositoryInterface,
	orgs entity.OrganizationRepositoryInterface,
	cache *InsightCache,
	clock Clock,
) *DonorInsights {
	if clock == nil {
		clock = SystemClock{}
	}
	return &DonorInsights{donors: donors, donations: donations, comms: comms, orgs: orgs, cache: cache, clock: clock}
}

func (s *DonorInsights) Get(ctx context.Context, organizationID, donorID string) (*entity.Insight, error) {
	donor, err := loadDonor(ctx, s.donors, organizationID, donorID)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(donor.ID, viewInsight); ok {
		return &cached, nil
	}
	gen := s.cache.Generation(donor.ID)

	var (
		completed []*entity.Donation
		latest    *entity.Communication
		count     int
		loc       *time.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		completed, err = s.donations.ListCompletedByDonor(gctx, donor.ID)
		if err != nil {
			return queryFailed("donations", err)
		}
		return nil
	})
	g.Go(func() error {
		c, err := s.comms.FindLatestByDonor(gctx, donor.ID)
		if err != nil && !errors.Is(err, entity.ErrCommunicationNotFound) {
			return queryFailed("latest communication", err)
		}
		latest = c
		return nil
	})
	g.Go(func() error {
		var err error
		count, err = s.comms.CountByDonor(gctx, donor.ID)
		if err != nil {
			return queryFailed("communication count", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		_, loc, err = organizationLocation(gctx, s.orgs, donor.OrganizationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	insight := entity.BuildInsight(entity.InsightInput{
		CompletedDonations:  completed,
		LatestCommunication: latest,
		CommunicationsCount: count,
		Now:                 s.clock.Now(),
		Location:            loc,
	})
	s.cache.Set(donor.ID, viewInsight, gen, insight)
	return &insight, nil
}
