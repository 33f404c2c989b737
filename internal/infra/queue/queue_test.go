package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTopology struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  [][3]string
}

func (f *fakeTopology) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeTopology) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeTopology) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.bindings = append(f.bindings, [3]string{name, key, exchange})
	return nil
}

func TestSetupTopology(t *testing.T) {
	ft := &fakeTopology{}
	require.NoError(t, setupTopology(ft))

	assert.ElementsMatch(t, []string{DLXName, ExchangeName}, ft.exchanges)
	assert.Equal(t, DLXName, ft.queues[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, ft.queues[DLQName])
	assert.Contains(t, ft.bindings, [3]string{QueueName, RoutingKey, ExchangeName})
	assert.Contains(t, ft.bindings, [3]string{DLQName, RoutingKey, DLXName})
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestProducer_PublishDonorReconcile(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	pub := &fakePublisher{}
	p := &Producer{ch: pub, now: func() time.Time { return now }}

	require.NoError(t, p.PublishDonorReconcile(context.Background(), "donor-1", "recompute_failed"))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var payload DonorReconcilePayload
	require.NoError(t, json.Unmarshal(pub.msg.Body, &payload))
	assert.Equal(t, DonorReconcilePayload{DonorID: "donor-1", Reason: "recompute_failed", RequestedAt: now}, payload)
}

func TestProducer_PublishDonorReconcile_Errors(t *testing.T) {
	p := &Producer{ch: &fakePublisher{err: amqp.ErrClosed}, now: time.Now}
	assert.ErrorIs(t, p.PublishDonorReconcile(context.Background(), "d", ""), amqp.ErrClosed)
	assert.Error(t, p.PublishDonorReconcile(context.Background(), "", ""))
}

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

type fakeAcknowledger struct {
	mu  sync.Mutex
	rec ackRecord
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.nacked, f.rec.requeue = true, requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.Nack(0, false, requeue)
}

func (f *fakeAcknowledger) record() ackRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec
}

type stubReconciler struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubReconciler) Reconcile(_ context.Context, donorID string) (entity.DonorAggregates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, donorID)
	return entity.DonorAggregates{TotalGivenCents: 500, GiftsCount: 1}, s.err
}

func delivery(ack amqp.Acknowledger, body string, redelivered bool) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body), Redelivered: redelivered}
}

func TestWorker_Handle(t *testing.T) {
	notFound := &usecase.DomainError{Code: usecase.CodeNotFound, Message: "donor not found"}
	technical := &usecase.TechnicalError{Code: usecase.CodeWriteFailed, Message: "x", Err: errors.New("db down")}

	tests := []struct {
		name        string
		body        string
		redelivered bool
		err         error
		want        ackRecord
	}{
		{name: "success acks", body: `{"donor_id":"d1"}`, want: ackRecord{acked: true}},
		{name: "malformed json dead-letters", body: `{`, want: ackRecord{nacked: true}},
		{name: "missing donor id dead-letters", body: `{"reason":"x"}`, want: ackRecord{nacked: true}},
		{name: "domain error dead-letters", body: `{"donor_id":"d1"}`, err: notFound, want: ackRecord{nacked: true}},
		{name: "technical error requeues first time", body: `{"donor_id":"d1"}`, err: technical, want: ackRecord{nacked: true, requeue: true}},
		{name: "technical error on redelivery dead-letters", body: `{"donor_id":"d1"}`, redelivered: true, err: technical, want: ackRecord{nacked: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			w := newWorker(nil, &stubReconciler{err: tt.err}, nil)

			w.handle(context.Background(), delivery(ack, tt.body, tt.redelivered))

			assert.Equal(t, tt.want, ack.record())
		})
	}
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
	err  error
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.msgs, f.err
}

func TestWorker_Start_ProcessesUntilCancelled(t *testing.T) {
	fc := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	rec := &stubReconciler{}
	w := newWorker(fc, rec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	ack := &fakeAcknowledger{}
	fc.msgs <- delivery(ack, `{"donor_id":"d9"}`, false)

	require.Eventually(t, func() bool { return ack.record().acked }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"d9"}, rec.calls)
}

func TestWorker_Start_ReturnsWhenChannelCloses(t *testing.T) {
	fc := &fakeConsumer{msgs: make(chan amqp.Delivery)}
	close(fc.msgs)

	assert.NoError(t, newWorker(fc, &stubReconciler{}, nil).Start(context.Background(), QueueName))
}

func TestWorker_Start_ConsumeError(t *testing.T) {
	fc := &fakeConsumer{err: amqp.ErrClosed}
	assert.ErrorIs(t, newWorker(fc, &stubReconciler{}, nil).Start(context.Background(), QueueName), amqp.ErrClosed)
}
