package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingReconciler struct {
	calls atomic.Int32
	limit atomic.Int32
	fixed int
	err   error
}

func (c *countingReconciler) ReconcileStale(_ context.Context, limit int) (int, error) {
	c.calls.Add(1)
	c.limit.Store(int32(limit))
	return c.fixed, c.err
}

func TestReconciliationWorker_SweepsImmediatelyAndOnTick(t *testing.T) {
	rec := &countingReconciler{fixed: 2}
	w := NewReconciliationWorker(rec, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int32(defaultBatchSize), rec.limit.Load())
}

func TestReconciliationWorker_LogsSweepErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &countingReconciler{fixed: 1, err: errors.New("donor d2: write failed")}
	w := NewReconciliationWorker(rec, time.Hour, zap.New(core))

	w.sweep(context.Background())

	entries := logs.FilterMessage("reconciliation sweep finished with errors").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["fixed"])
}

func TestReconciliationWorker_DefaultInterval(t *testing.T) {
	w := NewReconciliationWorker(&countingReconciler{}, 0, nil)
	assert.Equal(t, 10*time.Minute, w.tickInterval)
}
