package order

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sink accepts fully built orders for persistence or transport
type Sink interface {
	Submit(ctx context.Context, order *Order) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, order *Order) error

func (f SinkFunc) Submit(ctx context.Context, order *Order) error {
	return f(ctx, order)
}

// FanOut submits to each sink in order and stops at the first failure.
// Put the system of record first.
func FanOut(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, order *Order) error {
		for i, sink := range sinks {
			if sink == nil {
				continue
			}
			if err := sink.Submit(ctx, order); err != nil {
				return fmt.Errorf("order sink %d: %w", i, err)
			}
		}
		return nil
	})
}

// BestEffort wraps a secondary sink. Its failures are logged and never returned.
func BestEffort(sink Sink, name string, logger logrus.FieldLogger) Sink {
	return SinkFunc(func(ctx context.Context, order *Order) error {
		if err := sink.Submit(ctx, order); err != nil {
			logger.WithError(err).
				WithFields(logrus.Fields{"sink": name, "order_id": order.OrderID}).
				Warn("Secondary order sink failed")
		}
		return nil
	})
}
