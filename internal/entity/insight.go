package entity

import "time"

type EngagementStatus struct {
	EngagementScore int    `json:"engagementScore"`
	EngagementLevel string `json:"engagementLevel"`
}

// Insight is computed per request and never stored.
type Insight struct {
	Status             EngagementStatus `json:"status"`
	GivingFrequency    string           `json:"givingFrequency"`
	SuggestedAskAmount int64            `json:"suggestedAskAmount"`
	LastContact        *time.Time       `json:"lastContact"`
	NextBestAction     string           `json:"nextBestAction"`
	Lapsed             LapsedStatus     `json:"lapsed"`
}

type InsightInput struct {
	CompletedDonations  []*Donation
	LatestCommunication *Communication
	CommunicationsCount int
	Now                 time.Time
	Location            *time.Location
}

// BuildInsight runs the classifier, scorer and recommender over one donor's history.
func BuildInsight(in InsightInput) Insight {
	agg := ComputeDonorAggregates(in.CompletedDonations)

	dates := make([]time.Time, 0, len(in.CompletedDonations))
	for _, d := range in.CompletedDonations {
		if d != nil && d.Completed() {
			dates = append(dates, d.DonatedAt)
		}
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	lapsed := ClassifyLapsed(GiftYears(dates, loc), in.Now.In(loc).Year())

	score := ScoreEngagement(EngagementInput{
		GiftsCount:          agg.GiftsCount,
		TotalGivenCents:     agg.TotalGivenCents,
		CommunicationsCount: in.CommunicationsCount,
	})
	level := EngagementLevel(score)

	var lastContact *time.Time
	if in.LatestCommunication != nil {
		t := in.LatestCommunication.ContactTime()
		lastContact = &t
	}

	return Insight{
		Status:             EngagementStatus{EngagementScore: score, EngagementLevel: level},
		GivingFrequency:    GivingFrequency(agg.GiftsCount),
		SuggestedAskAmount: SuggestedAskAmount(agg.TotalGivenCents, agg.GiftsCount),
		LastContact:        lastContact,
		NextBestAction:     NextBestAction(level),
		Lapsed:             lapsed,
	}
}
