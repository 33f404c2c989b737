package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

// LapsedDonors runs the LYBUNT/SYBUNT classifier over a whole organization.
type LapsedDonors struct {
	donors    entity.DonorRepositoryInterface
	donations entity.DonationRepositoryInterface
	orgs      entity.OrganizationRepositoryInterface
	clock     Clock
}

func NewLapsedDonors(donors entity.DonorRepositoryInterface, donations entity.DonationRepositoryInterface, orgs entity.OrganizationRepositoryInterface, clock Clock) *LapsedDonors {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LapsedDonors{donors: donors, donations: donations, orgs: orgs, clock: clock}
}

type classification struct {
	year          int
	statuses      map[string]entity.LapsedStatus
	lastYearGiven map[string]int64
}

func (s *LapsedDonors) classify(ctx context.Context, q LapsedQuery, donorIDs []string) (*classification, error) {
	organizationID := q.OrganizationID
	_, loc, err := organizationLocation(ctx, s.orgs, organizationID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	switch {
	case q.AsOfDate != "":
		if now, err = parseDate(q.AsOfDate, loc); err != nil {
			return nil, invalid("asOf", "must be YYYY-MM-DD or RFC3339")
		}
	case q.AsOf != nil:
		now = *q.AsOf
	}
	year := now.In(loc).Year()

	// gifts after asOf's year must not turn a lapsed donor current
	gifts, err := s.donations.ListCompletedByOrganization(ctx, organizationID, entity.StartOfYear(year+1, loc))
	if err != nil {
		return nil, queryFailed("donations", err)
	}

	dates := make(map[string][]time.Time, len(donorIDs))
	for _, id := range donorIDs {
		dates[id] = nil
	}
	lastYearGiven := make(map[string]int64)
	for _, g := range gifts {
		if _, ok := dates[g.DonorID]; !ok {
			continue
		}
		dates[g.DonorID] = append(dates[g.DonorID], g.DonatedAt)
		if g.DonatedAt.In(loc).Year() == year-1 {
			lastYearGiven[g.DonorID] += g.AmountCents
		}
	}

	years := make(map[string][]int, len(dates))
	for id, ds := range dates {
		years[id] = entity.GiftYears(ds, loc)
	}
	return &classification{
		year:          year,
		statuses:      entity.ClassifyDonors(years, year),
		lastYearGiven: lastYearGiven,
	}, nil
}

// List returns every LYBUNT donor of the organization, largest last-year giving first.
func (s *LapsedDonors) List(ctx context.Context, q LapsedQuery) ([]LapsedDonor, error) {
	donors, err := s.donors.List(ctx, q.OrganizationID, entity.DonorFilter{})
	if err != nil {
		return nil, queryFailed("donors", err)
	}
	ids := make([]string, 0, len(donors))
	for _, d := range donors {
		ids = append(ids, d.ID)
	}

	c, err := s.classify(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	out := []LapsedDonor{}
	for _, d := range donors {
		st := c.statuses[d.ID]
		if !st.IsLYBUNT {
			continue
		}
		out = append(out, LapsedDonor{Donor: d, Status: st, LastYearGivenCents: c.lastYearGiven[d.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastYearGivenCents != out[j].LastYearGivenCents {
			return out[i].LastYearGivenCents > out[j].LastYearGivenCents
		}
		return out[i].Donor.Name < out[j].Donor.Name
	})
	return out, nil
}

// Stats counts LYBUNT and SYBUNT donors. LYBUNTValueCents is what the LYBUNT
// donors gave in the previous calendar year. With q.DonorID set only that
// donor is counted; a donor outside the organization counts as nothing.
func (s *LapsedDonors) Stats(ctx context.Context, q LapsedQuery) (*LapsedStats, error) {
	ids, err := s.statsDonorIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	c, err := s.classify(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	stats := &LapsedStats{Year: c.year}
	for id, st := range c.statuses {
		switch {
		case st.IsLYBUNT:
			stats.LYBUNTCount++
			stats.LYBUNTValueCents += c.lastYearGiven[id]
		case st.IsSYBUNT:
			stats.SYBUNTCount++
		}
	}
	return stats, nil
}

func (s *LapsedDonors) statsDonorIDs(ctx context.Context, q LapsedQuery) ([]string, error) {
	if q.DonorID == "" {
		ids, err := s.donors.ListIDsByOrganization(ctx, q.OrganizationID)
		if err != nil {
			return nil, queryFailed("donors", err)
		}
		return ids, nil
	}
	donor, err := loadDonor(ctx, s.donors, q.OrganizationID, q.DonorID)
	if err != nil {
		if HasCode(err, CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []string{donor.ID}, nil
}
