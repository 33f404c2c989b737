package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/donor-crm/internal/entity"
)

// DonationLedger answers "which donations, and how much" over a timeframe.
type DonationLedger struct {
	donations entity.DonationRepositoryInterface
	orgs      entity.OrganizationRepositoryInterface
	clock     Clock
}

func NewDonationLedger(donations entity.DonationRepositoryInterface, orgs entity.OrganizationRepositoryInterface, clock Clock) *DonationLedger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &DonationLedger{donations: donations, orgs: orgs, clock: clock}
}

// Read lists matching donations newest-first with their aggregate. The
// aggregate covers COMPLETED donations unless q.AllStatuses is set.
func (l *DonationLedger) Read(ctx context.Context, q LedgerQuery) (*LedgerResult, error) {
	tf, err := entity.ParseTimeframe(q.Timeframe)
	if err != nil {
		return nil, invalid("timeframe", err.Error())
	}

	_, loc, err := organizationLocation(ctx, l.orgs, q.OrganizationID)
	if err != nil {
		return nil, err
	}
	from, to := tf.Window(l.clock.Now(), loc)

	filter := entity.DonationFilter{
		OrganizationID: q.OrganizationID,
		DonorID:        q.DonorID,
		CampaignID:     q.CampaignID,
		From:           from,
		To:             &to,
		Limit:          q.Limit,
	}
	if !q.AllStatuses {
		filter.Statuses = []entity.DonationStatus{entity.DonationCompleted}
	}

	var (
		donations []*entity.Donation
		totals    entity.DonationTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		donations, err = l.donations.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		f := filter
		f.Limit = 0
		var err error
		totals, err = l.donations.Totals(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, queryFailed("donations", err)
	}

	if donations == nil {
		donations = []*entity.Donation{}
	}
	return &LedgerResult{
		Donations: donations,
		Aggregate: newAggregate(totals),
		From:      from,
		To:        to,
	}, nil
}

func newAggregate(t entity.DonationTotals) Aggregate {
	a := Aggregate{SumCents: t.SumCents, Count: t.Count}
	if t.Count > 0 {
		a.AverageCents = roundDiv(t.SumCents, int64(t.Count))
	}
	return a
}

// roundDiv divides rounding half away from zero.
func roundDiv(n, d int64) int64 {
	if (n < 0) != (d < 0) {
		return (n - d/2) / d
	}
	return (n + d/2) / d
}
