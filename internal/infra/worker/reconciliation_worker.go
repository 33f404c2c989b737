package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultBatchSize = 200

// StaleReconciler repairs donors whose stored aggregates drifted from the ledger.
type StaleReconciler interface {
	ReconcileStale(ctx context.Context, limit int) (int, error)
}

// ReconciliationWorker sweeps stale donor aggregates on a fixed interval.
type ReconciliationWorker struct {
	reconciler   StaleReconciler
	tickInterval time.Duration
	batchSize    int
	logger       *zap.Logger
}

func NewReconciliationWorker(reconciler StaleReconciler, interval time.Duration, logger *zap.Logger) *ReconciliationWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationWorker{
		reconciler:   reconciler,
		tickInterval: interval,
		batchSize:    defaultBatchSize,
		logger:       logger.Named("reconciliation_worker"),
	}
}

// Start runs one sweep immediately, then one per tick until ctx is done.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	w.logger.Info("reconciliation worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconciliation worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReconciliationWorker) sweep(ctx context.Context) {
	started := time.Now()
	fixed, err := w.reconciler.ReconcileStale(ctx, w.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("reconciliation sweep finished with errors", zap.Int("fixed", fixed), zap.Error(err))
		return
	}
	if fixed > 0 {
		w.logger.Info("reconciled stale donors", zap.Int("fixed", fixed), zap.Duration("took", time.Since(started)))
	}
}
