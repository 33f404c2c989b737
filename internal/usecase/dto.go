package usecase

import (
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type CreateDonorInput struct {
	OrganizationID string            `json:"-"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Stage          string            `json:"stage"`
	Tags           []string          `json:"tags"`
	Interests      map[string]string `json:"interests"`
}

type RecordDonationInput struct {
	OrganizationID string  `json:"-"`
	DonorID        string  `json:"donor_id"`
	AmountCents    int64   `json:"amount_cents"`
	Currency       string  `json:"currency"`
	Date           string  `json:"date"` // YYYY-MM-DD or RFC3339; empty means now
	PaymentMethod  string  `json:"payment_method"`
	CampaignID     *string `json:"campaign_id"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

type RecordCommunicationInput struct {
	OrganizationID string  `json:"-"`
	DonorID        string  `json:"donor_id"`
	DonationID     *string `json:"donation_id"`
	Type           string  `json:"type"`
	Direction      string  `json:"direction"`
	Status         string  `json:"status"`
	Subject        string  `json:"subject"`
	Content        string  `json:"content"`
	ScheduledAt    string  `json:"scheduled_at"` // RFC3339, meetings only
	DraftWithAI    bool    `json:"draft_with_ai"`
}

type LedgerQuery struct {
	OrganizationID string
	DonorID        string
	CampaignID     string
	Timeframe      string
	AllStatuses    bool
	Limit          int
}

type Aggregate struct {
	SumCents     int64 `json:"sum_cents"`
	AverageCents int64 `json:"average_cents"`
	Count        int   `json:"count"`
}

type LedgerResult struct {
	Donations []*entity.Donation `json:"donations"`
	Aggregate Aggregate          `json:"aggregate"`
	From      *time.Time         `json:"from,omitempty"`
	To        time.Time          `json:"to"`
}

type SummaryQuery struct {
	OrganizationID string
	Timeframe      string
	DonorID        string
	CampaignID     string
}

type DonationSummaryOutput struct {
	TotalCents       int64              `json:"total_cents"`
	AverageCents     int64              `json:"average_cents"`
	Count            int                `json:"count"`
	LYBUNTCount      int                `json:"lybunt_count"`
	LYBUNTValueCents int64              `json:"lybunt_value_cents"`
	RecentDonations  []*entity.Donation `json:"recent_donations"`
}

type LapsedQuery struct {
	OrganizationID string
	// DonorID narrows Stats to one donor of the organization.
	DonorID        string
	AsOf           *time.Time
	// AsOfDate is a calendar date read in the organization timezone; it wins over AsOf.
	AsOfDate string
}

type LapsedDonor struct {
	Donor              *entity.Donor       `json:"donor"`
	Status             entity.LapsedStatus `json:"status"`
	LastYearGivenCents int64               `json:"last_year_given_cents"`
}

type LapsedStats struct {
	Year             int   `json:"year"`
	LYBUNTCount      int   `json:"lybunt_count"`
	LYBUNTValueCents int64 `json:"lybunt_value_cents"`
	SYBUNTCount      int   `json:"sybunt_count"`
}

type RegisterInput struct {
	OrganizationName string `json:"organization_name"`
	Timezone         string `json:"timezone"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

type AuthOutput struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	UserID           string    `json:"user_id"`
	OrganizationID   string    `json:"organization_id"`
}
