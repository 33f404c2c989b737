package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const recentDonationsLimit = 10

// DonationSummary backs the dashboard: ledger totals for a timeframe plus
// LYBUNT figures. A donor filter scopes both. LYBUNT is a property of a
// donor's giving across all campaigns, so a campaign filter narrows the
// totals only.
type DonationSummary struct {
	ledger *DonationLedger
	lapsed *LapsedDonors
}

func NewDonationSummary(ledger *DonationLedger, lapsed *LapsedDonors) *DonationSummary {
	return &DonationSummary{ledger: ledger, lapsed: lapsed}
}

func (s *DonationSummary) Get(ctx context.Context, q SummaryQuery) (*DonationSummaryOutput, error) {
	var (
		ledger *LedgerResult
		stats  *LapsedStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger, err = s.ledger.Read(gctx, LedgerQuery{
			OrganizationID: q.OrganizationID,
			DonorID:        q.DonorID,
			CampaignID:     q.CampaignID,
			Timeframe:      q.Timeframe,
			Limit:          recentDonationsLimit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.lapsed.Stats(gctx, LapsedQuery{OrganizationID: q.OrganizationID, DonorID: q.DonorID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DonationSummaryOutput{
		TotalCents:       ledger.Aggregate.SumCents,
		AverageCents:     ledger.Aggregate.AverageCents,
		Count:            ledger.Aggregate.Count,
		LYBUNTCount:      stats.LYBUNTCount,
		LYBUNTValueCents: stats.LYBUNTValueCents,
		RecentDonations:  ledger.Donations,
	}, nil
}
