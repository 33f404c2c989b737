package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

// organizationLocation resolves the calendar zone used for an organization's
// year boundaries.
func organizationLocation(ctx context.Context, orgs entity.OrganizationRepositoryInterface, organizationID string) (*entity.Organization, *time.Location, error) {
	org, err := orgs.FindByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, entity.ErrOrganizationNotFound) {
			return nil, nil, notFound("organization not found")
		}
		return nil, nil, queryFailed("organization", err)
	}
	return org, org.Location(), nil
}

// loadDonor fetches a donor and hides donors that belong to other organizations.
func loadDonor(ctx context.Context, donors entity.DonorRepositoryInterface, organizationID, donorID string) (*entity.Donor, error) {
	donor, err := donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, entity.ErrDonorNotFound) {
			return nil, notFound("donor not found")
		}
		return nil, queryFailed("donor", err)
	}
	if organizationID != "" && donor.OrganizationID != organizationID {
		return nil, notFound("donor not found")
	}
	return donor, nil
}
