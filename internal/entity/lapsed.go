package entity

import (
	"sort"
	"time"
)

// LapsedStatus is the LYBUNT/SYBUNT classification of one donor for a year.
type LapsedStatus struct {
	IsLYBUNT bool `json:"isLYBUNT"`
	IsSYBUNT bool `json:"isSYBUNT"`
}

// ClassifyLapsed classifies a donor from the calendar years of its completed gifts.
//
// LYBUNT: gave in currentYear-1 and not in currentYear.
// SYBUNT: not LYBUNT, not in currentYear, and gave in some year before currentYear-1.
// Years after currentYear are ignored.
func ClassifyLapsed(giftYears []int, currentYear int) LapsedStatus {
	var thisYear, lastYear, earlier bool
	for _, y := range giftYears {
		switch {
		case y == currentYear:
			thisYear = true
		case y == currentYear-1:
			lastYear = true
		case y < currentYear-1:
			earlier = true
		}
	}
	if thisYear {
		return LapsedStatus{}
	}
	if lastYear {
		return LapsedStatus{IsLYBUNT: true}
	}
	return LapsedStatus{IsSYBUNT: earlier}
}

// ClassifyDonors is the batch form of ClassifyLapsed. Every key of giftYears
// has an entry in the result, including donors with no gifts.
func ClassifyDonors(giftYears map[string][]int, currentYear int) map[string]LapsedStatus {
	out := make(map[string]LapsedStatus, len(giftYears))
	for donorID, years := range giftYears {
		out[donorID] = ClassifyLapsed(years, currentYear)
	}
	return out
}

// GiftYears returns the distinct calendar years, in loc, of the given dates, ascending.
func GiftYears(dates []time.Time, loc *time.Location) []int {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[int]struct{}, len(dates))
	years := make([]int, 0, len(dates))
	for _, d := range dates {
		y := d.In(loc).Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
