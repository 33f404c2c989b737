package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
)

const reconcileReasonAfterWrite = "aggregate recompute failed after donation write"

type RecordDonationUseCase struct {
	donors     entity.DonorRepositoryInterface
	donations  entity.DonationRepositoryInterface
	orgs       entity.OrganizationRepositoryInterface
	reconciler *DonorReconciler
	cache      DonorCacheInvalidator
	publisher  ReconcilePublisher
	metrics    Metrics
	clock      Clock
	logger     *zap.Logger
}

func NewRecordDonationUseCase(
	donors entity.DonorRepositoryInterface,
	donations entity.DonationRepositoryInterface,
	orgs entity.OrganizationRepositoryInterface,
	reconciler *DonorReconciler,
	cache DonorCacheInvalidator,
	publisher ReconcilePublisher,
	metrics Metrics,
	clock Clock,
	logger *zap.Logger,
) *RecordDonationUseCase {
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
	return &RecordDonationUseCase{
		donors:     donors,
		donations:  donations,
		orgs:       orgs,
		reconciler: reconciler,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
	}
}

// Execute stores the donation, drops the donor's cached views and then
// recomputes the donor's aggregates. A failed recompute does not fail the call: the donation is returned and a
// reconcile request is queued instead.
func (uc *RecordDonationUseCase) Execute(ctx context.Context, input RecordDonationInput) (*entity.Donation, error) {
	if errs := ValidateRecordDonationInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	donor, err := loadDonor(ctx, uc.donors, input.OrganizationID, input.DonorID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	donatedAt := now
	if input.Date != "" {
		_, loc, err := organizationLocation(ctx, uc.orgs, donor.OrganizationID)
		if err != nil {
			return nil, err
		}
		donatedAt, _ = parseDate(input.Date, loc)
	}

	donation, err := entity.NewDonation(
		donor.OrganizationID,
		donor.ID,
		input.CampaignID,
		input.AmountCents,
		input.Currency,
		donatedAt,
		entity.PaymentMethod(input.PaymentMethod),
		entity.DonationStatus(input.Status),
		input.Notes,
		now,
	)
	if err != nil {
		return nil, invalid("donation", err.Error())
	}

	if err := uc.donations.Create(ctx, donation); err != nil {
		return nil, writeFailed("donation", err)
	}
	uc.cache.InvalidateDonor(donor.ID)

	uc.metrics.DonationRecorded(string(donation.PaymentMethod), string(donation.Status))
	uc.logger.Info("donation recorded",
		zap.String("donation_id", donation.ID),
		zap.String("donor_id", donor.ID),
		zap.Int64("amount_cents", donation.AmountCents),
		zap.String("status", string(donation.Status)),
	)

	uc.recompute(ctx, donor.ID)
	return donation, nil
}

// UpdateStatus applies a status transition and recomputes the donor aggregates.
func (uc *RecordDonationUseCase) UpdateStatus(ctx context.Context, organizationID, donationID, status string) (*entity.Donation, error) {
	next := entity.DonationStatus(status)
	if !next.Valid() {
		return nil, invalid("status", "is invalid")
	}

	donation, err := uc.donations.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, entity.ErrDonationNotFound) {
			return nil, notFound("donation not found")
		}
		return nil, queryFailed("donation", err)
	}
	if donation.OrganizationID != organizationID {
		return nil, notFound("donation not found")
	}

	if err := donation.TransitionTo(next, uc.clock.Now()); err != nil {
		return nil, invalid("status", err.Error())
	}
	if err := uc.donations.UpdateStatus(ctx, donation.ID, donation.Status); err != nil {
		if errors.Is(err, entity.ErrDonationNotFound) {
			return nil, notFound("donation not found")
		}
		return nil, writeFailed("donation status", err)
	}
	uc.cache.InvalidateDonor(donation.DonorID)

	uc.metrics.DonationRecorded(string(donation.PaymentMethod), string(donation.Status))
	uc.recompute(ctx, donation.DonorID)
	return donation, nil
}

func (uc *RecordDonationUseCase) recompute(ctx context.Context, donorID string) {
	// the donation is already committed; a cancelled request must not skip the recompute
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	_, err := uc.reconciler.Reconcile(ctx, donorID)
	if err == nil {
		return
	}
	uc.logger.Error("donor aggregate recompute failed, queueing reconcile",
		zap.String("donor_id", donorID),
		zap.Error(err),
	)
	if uc.publisher == nil {
		return
	}
	if perr := uc.publisher.PublishDonorReconcile(ctx, donorID, reconcileReasonAfterWrite); perr != nil {
		uc.metrics.IntegrationError("rabbitmq")
		uc.logger.Error("failed to queue donor reconcile; scheduled reconciliation will repair it",
			zap.String("donor_id", donorID),
			zap.Error(perr),
		)
	}
}
