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

func TestLedgerYearStartsInOrganizationTimezone(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepository)
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", ctx, orgID).Return(testOrg("America/New_York"), nil)

	// Jan 1 00:00 in New York is 05:00 UTC.
	wantFrom := time.Date(2024, time.January, 1, 5, 0, 0, 0, time.UTC)
	matchesWindow := mock.MatchedBy(func(f entity.DonationFilter) bool {
		return f.From != nil && f.From.Equal(wantFrom) &&
			f.To != nil && f.To.Equal(fixedNow) &&
			f.OrganizationID == orgID &&
			len(f.Statuses) == 1 && f.Statuses[0] == entity.DonationCompleted
	})

	gifts := []*entity.Donation{
		completedGift("d2", donorID, 30000, date(2024, time.May, 1)),
		completedGift("d1", donorID, 10000, date(2024, time.February, 1)),
	}
	donations.On("List", mock.Anything, matchesWindow).Return(gifts, nil)
	donations.On("Totals", mock.Anything, matchesWindow).Return(entity.DonationTotals{SumCents: 40000, Count: 2}, nil)

	ledger := usecase.NewDonationLedger(donations, orgs, fixedClock())
	res, err := ledger.Read(ctx, usecase.LedgerQuery{OrganizationID: orgID, Timeframe: "year"})

	require.NoError(t, err)
	assert.Equal(t, gifts, res.Donations)
	assert.Equal(t, usecase.Aggregate{SumCents: 40000, AverageCents: 20000, Count: 2}, res.Aggregate)
	require.NotNil(t, res.From)
	assert.True(t, res.From.Equal(wantFrom))
}

func TestLedgerAllIsUnboundedAndCanIncludeEveryStatus(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepository)
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", ctx, orgID).Return(testOrg("UTC"), nil)

	unbounded := mock.MatchedBy(func(f entity.DonationFilter) bool {
		return f.From == nil && len(f.Statuses) == 0 && f.DonorID == donorID
	})
	donations.On("List", mock.Anything, unbounded).Return(nil, nil)
	donations.On("Totals", mock.Anything, unbounded).Return(entity.DonationTotals{}, nil)

	ledger := usecase.NewDonationLedger(donations, orgs, fixedClock())
	res, err := ledger.Read(ctx, usecase.LedgerQuery{OrganizationID: orgID, DonorID: donorID, AllStatuses: true})

	require.NoError(t, err)
	assert.Empty(t, res.Donations)
	assert.NotNil(t, res.Donations)
	assert.Nil(t, res.From)
	assert.Equal(t, usecase.Aggregate{}, res.Aggregate)
}

func TestLedgerRejectsUnknownTimeframe(t *testing.T) {
	ledger := usecase.NewDonationLedger(new(MockDonationRepository), new(MockOrganizationRepository), fixedClock())

	_, err := ledger.Read(context.Background(), usecase.LedgerQuery{OrganizationID: orgID, Timeframe: "fortnight"})

	assert.True(t, usecase.HasCode(err, usecase.CodeValidation))
}

func TestLedgerNeverReturnsPartialResults(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepository)
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", ctx, orgID).Return(testOrg("UTC"), nil)
	donations.On("List", mock.Anything, mock.Anything).Return([]*entity.Donation{}, nil)
	donations.On("Totals", mock.Anything, mock.Anything).Return(entity.DonationTotals{}, errDB)

	ledger := usecase.NewDonationLedger(donations, orgs, fixedClock())
	res, err := ledger.Read(ctx, usecase.LedgerQuery{OrganizationID: orgID, Timeframe: "30days"})

	assert.Nil(t, res)
	var te *usecase.TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, usecase.CodeQueryFailed, te.Code)
	assert.ErrorIs(t, err, errDB)
}

func TestLedgerAverageRoundsToNearestCent(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepository)
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", ctx, orgID).Return(testOrg("UTC"), nil)
	donations.On("List", mock.Anything, mock.Anything).Return([]*entity.Donation{}, nil)
	donations.On("Totals", mock.Anything, mock.Anything).Return(entity.DonationTotals{SumCents: 1000, Count: 3}, nil)

	res, err := usecase.NewDonationLedger(donations, orgs, fixedClock()).
		Read(ctx, usecase.LedgerQuery{OrganizationID: orgID})

	require.NoError(t, err)
	assert.Equal(t, int64(333), res.Aggregate.AverageCents)
}
