package entity

import "math"

const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"

	ActionInviteToMeeting = "Invite to meeting"
	ActionUpdateEmail     = "Send update email"
	ActionThankYouNote    = "Send thank you note"

	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyOneTime   = "one-time"

	// DefaultAskAmount is used for donors without gifts, in whole currency units.
	DefaultAskAmount int64 = 100

	majorLifetimeCents int64 = 1000 * 100
	askMultiplier            = 1.25
)

type EngagementInput struct {
	GiftsCount          int
	TotalGivenCents     int64
	CommunicationsCount int
}

// ScoreEngagement is a fixed additive point system capped at 100.
func ScoreEngagement(in EngagementInput) int {
	score := 0
	if in.GiftsCount > 0 {
		score += 40
	}
	if in.GiftsCount >= 5 {
		score += 20
	}
	if in.CommunicationsCount > 0 {
		score += 20
	}
	if in.TotalGivenCents >= majorLifetimeCents {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return score
}

func EngagementLevel(score int) string {
	switch {
	case score >= 75:
		return LevelHigh
	case score >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

func NextBestAction(level string) string {
	switch level {
	case LevelHigh:
		return ActionInviteToMeeting
	case LevelMedium:
		return ActionUpdateEmail
	default:
		return ActionThankYouNote
	}
}

// SuggestedAskAmount is 125% of the average gift in whole currency units,
// rounded half away from zero.
func SuggestedAskAmount(totalGivenCents int64, giftsCount int) int64 {
	if giftsCount <= 0 {
		return DefaultAskAmount
	}
	avg := float64(totalGivenCents) / 100 / float64(giftsCount)
	return int64(math.Round(avg * askMultiplier))
}

func GivingFrequency(giftsCount int) string {
	switch {
	case giftsCount >= 8:
		return FrequencyMonthly
	case giftsCount >= 4:
		return FrequencyQuarterly
	default:
		return FrequencyOneTime
	}
}
