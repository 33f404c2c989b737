package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
)

// DonorReconciler rebuilds a donor's stored aggregates from the ledger. It is
// idempotent and safe to run from the queue worker, the ticker and the CLI.
type DonorReconciler struct {
	donors    entity.DonorRepositoryInterface
	donations entity.DonationRepositoryInterface
	cache     DonorCacheInvalidator
	logger    *zap.Logger
}

func NewDonorReconciler(donors entity.DonorRepositoryInterface, donations entity.DonationRepositoryInterface, cache DonorCacheInvalidator, logger *zap.Logger) *DonorReconciler {
	if cache == nil {
		cache = noopInvalidator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonorReconciler{donors: donors, donations: donations, cache: cache, logger: logger}
}

func (r *DonorReconciler) Reconcile(ctx context.Context, donorID string) (entity.DonorAggregates, error) {
	donations, err := r.donations.ListCompletedByDonor(ctx, donorID)
	if err != nil {
		return entity.DonorAggregates{}, queryFailed("donations", err)
	}
	agg := entity.ComputeDonorAggregates(donations)
	if err := r.donors.UpdateAggregates(ctx, donorID, agg); err != nil {
		if errors.Is(err, entity.ErrDonorNotFound) {
			return entity.DonorAggregates{}, notFound("donor not found")
		}
		return entity.DonorAggregates{}, writeFailed("donor aggregates", err)
	}
	r.cache.InvalidateDonor(donorID)
	return agg, nil
}

// ReconcileDonor is Reconcile scoped to an organization.
func (r *DonorReconciler) ReconcileDonor(ctx context.Context, organizationID, donorID string) (*entity.Donor, error) {
	donor, err := loadDonor(ctx, r.donors, organizationID, donorID)
	if err != nil {
		return nil, err
	}
	agg, err := r.Reconcile(ctx, donor.ID)
	if err != nil {
		return nil, err
	}
	donor.ApplyAggregates(agg)
	return donor, nil
}

// ReconcileStale repairs up to limit donors whose aggregates disagree with the
// ledger. It keeps going past individual failures and reports them joined.
func (r *DonorReconciler) ReconcileStale(ctx context.Context, limit int) (int, error) {
	ids, err := r.donors.ListStaleAggregates(ctx, limit)
	if err != nil {
		return 0, queryFailed("stale donors", err)
	}

	var (
		fixed int
		errs  []error
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := r.Reconcile(ctx, id); err != nil {
			r.logger.Warn("donor reconciliation failed", zap.String("donor_id", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		fixed++
	}
	return fixed, errors.Join(errs...)
}
