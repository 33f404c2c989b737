package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

func TestDonationSummaryCombinesLedgerAndLapsedStats(t *testing.T) {
	donors, donations, orgs := lapsedFixture(t)
	recent := []*entity.Donation{completedGift("g4", "B", 1000, date(2024, time.January, 10))}
	donations.On("List", mock.Anything, mock.MatchedBy(func(f entity.DonationFilter) bool {
		return f.Limit == 10
	})).Return(recent, nil)
	donations.On("Totals", mock.Anything, mock.MatchedBy(func(f entity.DonationFilter) bool {
		return f.Limit == 0
	})).Return(entity.DonationTotals{SumCents: 1000, Count: 1}, nil)

	clock := fixedClock()
	summary := usecase.NewDonationSummary(
		usecase.NewDonationLedger(donations, orgs, clock),
		usecase.NewLapsedDonors(donors, donations, orgs, clock),
	)
	out, err := summary.Get(context.Background(), usecase.SummaryQuery{OrganizationID: orgID, Timeframe: "year"})

	require.NoError(t, err)
	assert.Equal(t, &usecase.DonationSummaryOutput{
		TotalCents:       1000,
		AverageCents:     1000,
		Count:            1,
		LYBUNTCount:      1,
		LYBUNTValueCents: 7500,
		RecentDonations:  recent,
	}, out)
}

func TestDonationSummaryFailsWhole(t *testing.T) {
	ctx := context.Background()
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", mock.Anything, orgID).Return(testOrg("UTC"), nil)
	donations := new(MockDonationRepository)
	donations.On("List", mock.Anything, mock.Anything).Return([]*entity.Donation{}, nil)
	donations.On("Totals", mock.Anything, mock.Anything).Return(entity.DonationTotals{}, nil)
	donors := new(MockDonorRepository)
	donors.On("ListIDsByOrganization", mock.Anything, orgID).Return(nil, errDB)

	out, err := usecase.NewDonationSummary(
		usecase.NewDonationLedger(donations, orgs, fixedClock()),
		usecase.NewLapsedDonors(donors, donations, orgs, fixedClock()),
	).Get(ctx, usecase.SummaryQuery{OrganizationID: orgID})

	assert.Nil(t, out)
	assert.True(t, usecase.IsTechnicalError(err))
}

func TestDonationSummaryLapsedFiguresFollowDonorFilter(t *testing.T) {
	tests := []struct {
		name      string
		donorID   string
		wantCount int
		wantValue int64
	}{
		{"lybunt donor", "A", 1, 7500},
		{"gave this year", "B", 0, 0},
		{"other organization", "X", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			donors, donations, orgs := lapsedFixture(t)
			donors.On("FindByID", mock.Anything, "A").Return(&entity.Donor{ID: "A", OrganizationID: orgID}, nil)
			donors.On("FindByID", mock.Anything, "B").Return(&entity.Donor{ID: "B", OrganizationID: orgID}, nil)
			donors.On("FindByID", mock.Anything, "X").Return(&entity.Donor{ID: "X", OrganizationID: "org-2"}, nil)
			donations.On("List", mock.Anything, mock.Anything).Return([]*entity.Donation{}, nil)
			donations.On("Totals", mock.Anything, mock.Anything).Return(entity.DonationTotals{}, nil)

			clock := fixedClock()
			out, err := usecase.NewDonationSummary(
				usecase.NewDonationLedger(donations, orgs, clock),
				usecase.NewLapsedDonors(donors, donations, orgs, clock),
			).Get(context.Background(), usecase.SummaryQuery{OrganizationID: orgID, DonorID: tt.donorID})

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, out.LYBUNTCount)
			assert.Equal(t, tt.wantValue, out.LYBUNTValueCents)
			donors.AssertNotCalled(t, "ListIDsByOrganization", mock.Anything, mock.Anything)
		})
	}
}
