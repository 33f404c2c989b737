package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T; used by tests and the CLI's --as-of flag.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

type OutboundEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers one message and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, msg OutboundEmail) (string, error)
}

// ErrEmailNotConfigured is returned when no email provider is wired.
var ErrEmailNotConfigured = errors.New("email delivery is not configured")

type unconfiguredSender struct{}

func (unconfiguredSender) Send(context.Context, OutboundEmail) (string, error) {
	return "", ErrEmailNotConfigured
}

type DraftRequest struct {
	OrganizationName string
	DonorName        string
	Action           string
	TotalGivenCents  int64
	GiftsCount       int
	LastGiftDate     *time.Time
	Subject          string
}

// ContentDrafter writes outreach copy with an LLM.
type ContentDrafter interface {
	DraftOutreach(ctx context.Context, req DraftRequest) (string, error)
}

type MeetingRequest struct {
	Topic     string
	StartTime time.Time
	Duration  time.Duration
	Timezone  string
}

type ScheduledMeeting struct {
	ID      string
	JoinURL string
}

// MeetingScheduler books a video-conference meeting.
type MeetingScheduler interface {
	ScheduleMeeting(ctx context.Context, req MeetingRequest) (*ScheduledMeeting, error)
}

// ReconcilePublisher queues an asynchronous aggregate recomputation.
type ReconcilePublisher interface {
	PublishDonorReconcile(ctx context.Context, donorID, reason string) error
}

// DonorCacheInvalidator drops cached reads for a donor after a write.
type DonorCacheInvalidator interface {
	InvalidateDonor(donorID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDonor(string) {}

// Metrics receives domain counters. The HTTP metrics middleware package
// provides the Prometheus implementation.
type Metrics interface {
	DonationRecorded(method, status string)
	IntegrationError(service string)
}

type noopMetrics struct{}

func (noopMetrics) DonationRecorded(string, string) {}
func (noopMetrics) IntegrationError(string)         {}

// LeadNotifier sends the landing-page welcome message for a captured lead.
type LeadNotifier interface {
	NotifyLeadCaptured(ctx context.Context, lead *entity.Lead) error
}
