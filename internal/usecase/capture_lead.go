package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type CaptureLeadInput struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// CaptureLeadUseCase stores landing-page demo requests. The welcome message
// goes out in the background; its failure never fails the capture.
type CaptureLeadUseCase struct {
	leads    entity.LeadRepositoryInterface
	notifier LeadNotifier
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewCaptureLeadUseCase(leads entity.LeadRepositoryInterface, notifier LeadNotifier, logger *zap.Logger) *CaptureLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureLeadUseCase{leads: leads, notifier: notifier, logger: logger}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*entity.Lead, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "is invalid")
	}

	lead := &entity.Lead{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Organization: strings.TrimSpace(input.Organization),
	}
	if err := uc.leads.Upsert(ctx, lead); err != nil {
		return nil, writeFailed("lead", err)
	}

	if uc.notifier != nil {
		uc.wg.Add(1)
		go uc.notify(context.WithoutCancel(ctx), lead)
	}
	return lead, nil
}

func (uc *CaptureLeadUseCase) notify(ctx context.Context, lead *entity.Lead) {
	defer uc.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := uc.notifier.NotifyLeadCaptured(ctx, lead); err != nil && !errors.Is(err, context.Canceled) {
		uc.logger.Warn("lead welcome email failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}
}

// Wait blocks until background welcome messages have finished.
func (uc *CaptureLeadUseCase) Wait() {
	uc.wg.Wait()
}
