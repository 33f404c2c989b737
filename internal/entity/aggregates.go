package entity

import "time"

type DonorAggregates struct {
	TotalGivenCents int64
	GiftsCount      int
	FirstGiftDate   *time.Time
	LastGiftDate    *time.Time
}

// ComputeDonorAggregates recomputes a donor's lifetime figures from its
// donations. Only COMPLETED donations count.
func ComputeDonorAggregates(donations []*Donation) DonorAggregates {
	var a DonorAggregates
	for _, d := range donations {
		if d == nil || !d.Completed() {
			continue
		}
		a.TotalGivenCents += d.AmountCents
		a.GiftsCount++
		at := d.DonatedAt
		if a.FirstGiftDate == nil || at.Before(*a.FirstGiftDate) {
			first := at
			a.FirstGiftDate = &first
		}
		if a.LastGiftDate == nil || at.After(*a.LastGiftDate) {
			last := at
			a.LastGiftDate = &last
		}
	}
	return a
}
