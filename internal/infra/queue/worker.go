package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

// Reconciler recomputes one donor's aggregates.
type Reconciler interface {
	Reconcile(ctx context.Context, donorID string) (entity.DonorAggregates, error)
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	ch         consumer
	reconciler Reconciler
	logger     *zap.Logger
}

func NewWorker(ch *amqp.Channel, reconciler Reconciler, logger *zap.Logger) *Worker {
	return newWorker(ch, reconciler, logger)
}

func newWorker(ch consumer, reconciler Reconciler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{ch: ch, reconciler: reconciler, logger: logger.Named("reconcile_worker")}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: register consumer: %w", err)
	}

	w.logger.Info("worker listening", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks on success. Malformed bodies and permanent failures go straight
// to the DLQ; a technical failure is requeued once before dead-lettering.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload DonorReconcilePayload
	if err := json.Unmarshal(d.Body, &payload); err != nil || payload.DonorID == "" {
		w.logger.Warn("malformed reconcile message", zap.Error(err))
		w.nack(d, false)
		return
	}

	log := w.logger.With(zap.String("donor_id", payload.DonorID), zap.String("reason", payload.Reason))

	agg, err := w.reconciler.Reconcile(ctx, payload.DonorID)
	if err != nil {
		if usecase.IsDomainError(err) {
			log.Warn("reconcile rejected", zap.Error(err))
			w.nack(d, false)
			return
		}
		requeue := !d.Redelivered
		log.Error("reconcile failed", zap.Error(err), zap.Bool("requeue", requeue))
		w.nack(d, requeue)
		return
	}

	log.Info("donor reconciled",
		zap.Int64("total_given_cents", agg.TotalGivenCents),
		zap.Int("gifts_count", agg.GiftsCount))
	if err := d.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
}

func (w *Worker) nack(d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		w.logger.Error("nack failed", zap.Error(err))
	}
}
