package usecase

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
)

const defaultMeetingDuration = 30 * time.Minute

type RecordCommunicationUseCase struct {
	donors   entity.DonorRepositoryInterface
	comms    entity.CommunicationRepositoryInterface
	orgs     entity.OrganizationRepositoryInterface
	sender   EmailSender
	drafter  ContentDrafter
	meetings MeetingScheduler
	cache    DonorCacheInvalidator
	metrics  Metrics
	clock    Clock
	logger   *zap.Logger
}

// NewRecordCommunicationUseCase wires the flow. drafter and meetings may be
// nil when the integrations are not configured.
func NewRecordCommunicationUseCase(
	donors entity.DonorRepositoryInterface,
	comms entity.CommunicationRepositoryInterface,
	orgs entity.OrganizationRepositoryInterface,
	sender EmailSender,
	drafter ContentDrafter,
	meetings MeetingScheduler,
	cache DonorCacheInvalidator,
	metrics Metrics,
	clock Clock,
	logger *zap.Logger,
) *RecordCommunicationUseCase {
	if sender == nil {
		sender = unconfiguredSender{}
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordCommunicationUseCase{
		donors:   donors,
		comms:    comms,
		orgs:     orgs,
		sender:   sender,
		drafter:  drafter,
		meetings: meetings,
		cache:    cache,
		metrics:  metrics,
		clock:    clock,
		logger:   logger,
	}
}

// Execute logs a communication. An outbound EMAIL with status SENT is stored
// as SENDING first and then handed to the email sender; a send failure leaves
// the record in FAILED instead of returning an error.
func (uc *RecordCommunicationUseCase) Execute(ctx context.Context, input RecordCommunicationInput) (*entity.Communication, error) {
	if errs := ValidateRecordCommunicationInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	donor, err := loadDonor(ctx, uc.donors, input.OrganizationID, input.DonorID)
	if err != nil {
		return nil, err
	}

	typ := entity.CommunicationType(input.Type)
	wantSent := entity.CommunicationStatus(input.Status) == entity.CommSent
	isEmailSend := typ == entity.CommEmail && wantSent
	if isEmailSend && donor.Email == "" {
		return nil, invalid("donor_id", "donor has no email address")
	}

	content := input.Content
	if input.DraftWithAI && strings.TrimSpace(content) == "" {
		content, err = uc.draft(ctx, donor, input.Subject)
		if err != nil {
			return nil, err
		}
	}

	var scheduledAt *time.Time
	if input.ScheduledAt != "" {
		t, _ := time.Parse(time.RFC3339, input.ScheduledAt)
		scheduledAt = &t
	}

	now := uc.clock.Now()
	comm, err := entity.NewCommunication(
		donor.OrganizationID,
		donor.ID,
		input.DonationID,
		typ,
		entity.CommunicationDirection(input.Direction),
		strings.TrimSpace(input.Subject),
		content,
		scheduledAt,
		now,
	)
	if err != nil {
		return nil, invalid("communication", err.Error())
	}

	if typ == entity.CommMeeting && wantSent && scheduledAt != nil && uc.meetings != nil {
		if err := uc.scheduleMeeting(ctx, donor, comm); err != nil {
			return nil, err
		}
	}

	switch {
	case isEmailSend:
		if err := comm.BeginDelivery(now); err != nil {
			return nil, invalid("status", err.Error())
		}
	case wantSent:
		if err := comm.MarkSent(comm.ExternalID, now); err != nil {
			return nil, invalid("status", err.Error())
		}
	}

	if err := uc.comms.Create(ctx, comm); err != nil {
		return nil, writeFailed("communication", err)
	}
	uc.cache.InvalidateDonor(donor.ID)

	if isEmailSend {
		if err := uc.deliver(ctx, donor, comm); err != nil {
			return nil, err
		}
	}
	return comm, nil
}

// Send delivers an existing DRAFT email. The row is claimed before the
// provider is called, so concurrent sends of one draft deliver it once and
// the losers get a conflict.
func (uc *RecordCommunicationUseCase) Send(ctx context.Context, organizationID, communicationID string) (*entity.Communication, error) {
	comm, err := uc.comms.FindByID(ctx, communicationID)
	if err != nil {
		if errors.Is(err, entity.ErrCommunicationNotFound) {
			return nil, notFound("communication not found")
		}
		return nil, queryFailed("communication", err)
	}
	if comm.OrganizationID != organizationID {
		return nil, notFound("communication not found")
	}
	if comm.Type != entity.CommEmail || comm.Status != entity.CommDraft {
		return nil, invalid("status", "only DRAFT emails can be sent")
	}
	if strings.TrimSpace(comm.Subject) == "" {
		return nil, invalid("subject", "is required to send an email")
	}

	donor, err := loadDonor(ctx, uc.donors, organizationID, comm.DonorID)
	if err != nil {
		return nil, err
	}
	if donor.Email == "" {
		return nil, invalid("donor_id", "donor has no email address")
	}

	if err := comm.BeginDelivery(uc.clock.Now()); err != nil {
		return nil, invalid("status", err.Error())
	}
	if err := uc.comms.ClaimDelivery(ctx, comm); err != nil {
		if errors.Is(err, entity.ErrCommunicationNotFound) {
			return nil, conflict("communication is already being sent")
		}
		return nil, writeFailed("communication claim", err)
	}

	if err := uc.deliver(ctx, donor, comm); err != nil {
		return nil, err
	}
	return comm, nil
}

// deliver hands a claimed SENDING email to the sender and persists the outcome.
func (uc *RecordCommunicationUseCase) deliver(ctx context.Context, donor *entity.Donor, comm *entity.Communication) error {
	id, sendErr := uc.sender.Send(ctx, OutboundEmail{
		To:      donor.Email,
		Subject: comm.Subject,
		HTML:    renderHTML(comm.Content),
		Text:    comm.Content,
	})

	now := uc.clock.Now()
	if sendErr != nil {
		uc.metrics.IntegrationError("email")
		uc.logger.Warn("email send failed, communication marked FAILED",
			zap.String("communication_id", comm.ID),
			zap.String("donor_id", donor.ID),
			zap.Error(sendErr),
		)
		_ = comm.MarkFailed(now)
	} else {
		_ = comm.MarkSent(id, now)
	}

	// the provider call happened; record it even if the request was cancelled
	if err := uc.comms.UpdateDelivery(context.WithoutCancel(ctx), comm); err != nil {
		return writeFailed("communication delivery", err)
	}
	uc.cache.InvalidateDonor(donor.ID)
	return nil
}

func (uc *RecordCommunicationUseCase) draft(ctx context.Context, donor *entity.Donor, subject string) (string, error) {
	if uc.drafter == nil {
		return "", invalid("draft_with_ai", "AI drafting is not configured")
	}
	org, _, err := organizationLocation(ctx, uc.orgs, donor.OrganizationID)
	if err != nil {
		return "", err
	}
	count, err := uc.comms.CountByDonor(ctx, donor.ID)
	if err != nil {
		return "", queryFailed("communication count", err)
	}
	level := entity.EngagementLevel(entity.ScoreEngagement(entity.EngagementInput{
		GiftsCount:          donor.GiftsCount,
		TotalGivenCents:     donor.TotalGivenCents,
		CommunicationsCount: count,
	}))

	text, err := uc.drafter.DraftOutreach(ctx, DraftRequest{
		OrganizationName: org.Name,
		DonorName:        donor.Name,
		Action:           entity.NextBestAction(level),
		TotalGivenCents:  donor.TotalGivenCents,
		GiftsCount:       donor.GiftsCount,
		LastGiftDate:     donor.LastGiftDate,
		Subject:          subject,
	})
	if err != nil {
		uc.metrics.IntegrationError("llm")
		return "", &TechnicalError{Code: CodeUpstreamFail, Message: "draft generation failed", Err: err}
	}
	return text, nil
}

func (uc *RecordCommunicationUseCase) scheduleMeeting(ctx context.Context, donor *entity.Donor, comm *entity.Communication) error {
	org, _, err := organizationLocation(ctx, uc.orgs, donor.OrganizationID)
	if err != nil {
		return err
	}
	topic := comm.Subject
	if topic == "" {
		topic = "Meeting with " + donor.Name
	}
	m, err := uc.meetings.ScheduleMeeting(ctx, MeetingRequest{
		Topic:     topic,
		StartTime: *comm.ScheduledAt,
		Duration:  defaultMeetingDuration,
		Timezone:  org.Timezone,
	})
	if err != nil {
		uc.metrics.IntegrationError("zoom")
		return &TechnicalError{Code: CodeUpstreamFail, Message: "meeting scheduling failed", Err: err}
	}
	comm.ExternalID = m.ID
	comm.MeetingURL = m.JoinURL
	return nil
}

func renderHTML(text string) string {
	paragraphs := strings.Split(strings.TrimSpace(text), "\n\n")
	var b strings.Builder
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(p), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
