package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction runs operations in order. When one fails, the compensations of
// the operations that already succeeded run in reverse order.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        *zap.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

// AddOperation registers fn with its compensation; compensate may be nil.
func (t *Transaction) AddOperation(name string, fn, compensate func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
	t.compensations = append(t.compensations, Compensation{name, compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		comp := t.compensations[i]
		if comp.Fn == nil {
			continue
		}
		// the request context may already be cancelled
		if err := comp.Fn(context.WithoutCancel(ctx)); err != nil {
			t.logger.Error("compensation failed, data may be inconsistent",
				zap.String("operation", comp.Name),
				zap.Error(err),
			)
		}
	}
}
