package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type DonorReconcilePayload struct {
	DonorID     string    `json:"donor_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Producer struct {
	ch  publisher
	now func() time.Time
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{ch: ch, now: time.Now}
}

func (p *Producer) PublishDonorReconcile(ctx context.Context, donorID, reason string) error {
	if donorID == "" {
		return errors.New("queue: donor id is required")
	}
	body, err := json.Marshal(DonorReconcilePayload{
		DonorID:     donorID,
		Reason:      reason,
		RequestedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("queue: marshal payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("queue: publish reconcile: %w", err)
	}
	return nil
}
