package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsightLapsedSingleGift(t *testing.T) {
	in := InsightInput{
		CompletedDonations: []*Donation{gift(50000, day(2023, time.March, 1), DonationCompleted)},
		Now:                day(2024, time.June, 1),
		Location:           time.UTC,
	}

	got := BuildInsight(in)

	assert.True(t, got.Lapsed.IsLYBUNT)
	assert.False(t, got.Lapsed.IsSYBUNT)
	assert.Equal(t, 40, got.Status.EngagementScore)
	assert.Equal(t, LevelLow, got.Status.EngagementLevel)
	assert.Equal(t, ActionThankYouNote, got.NextBestAction)
	assert.Equal(t, FrequencyOneTime, got.GivingFrequency)
	assert.Equal(t, int64(625), got.SuggestedAskAmount)
	assert.Nil(t, got.LastContact)
}

func TestBuildInsightEngagedDonor(t *testing.T) {
	sentAt := day(2024, time.May, 20)
	in := InsightInput{
		CompletedDonations: []*Donation{
			gift(100000, day(2024, time.February, 1), DonationCompleted),
			gift(100000, day(2024, time.January, 1), DonationCompleted),
		},
		LatestCommunication: &Communication{Status: CommSent, SentAt: &sentAt, CreatedAt: day(2024, time.May, 19)},
		CommunicationsCount: 3,
		Now:                 day(2024, time.June, 1),
		Location:            time.UTC,
	}

	got := BuildInsight(in)

	assert.Equal(t, 80, got.Status.EngagementScore)
	assert.Equal(t, LevelHigh, got.Status.EngagementLevel)
	assert.Equal(t, ActionInviteToMeeting, got.NextBestAction)
	assert.Equal(t, int64(1250), got.SuggestedAskAmount)
	assert.Equal(t, LapsedStatus{}, got.Lapsed)
	require.NotNil(t, got.LastContact)
	assert.Equal(t, sentAt, *got.LastContact)
}

func TestBuildInsightUsesCreatedAtForUnsentContact(t *testing.T) {
	created := day(2024, time.May, 19)
	got := BuildInsight(InsightInput{
		LatestCommunication: &Communication{Status: CommDraft, CreatedAt: created},
		CommunicationsCount: 1,
		Now:                 day(2024, time.June, 1),
	})
	require.NotNil(t, got.LastContact)
	assert.Equal(t, created, *got.LastContact)
	assert.Equal(t, 20, got.Status.EngagementScore)
	assert.Equal(t, DefaultAskAmount, got.SuggestedAskAmount)
}
