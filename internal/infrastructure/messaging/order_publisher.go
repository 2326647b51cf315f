package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/your-org/store-backend/internal/config"
	"github.com/your-org/store-backend/internal/domain/order"
)

// OrderCreatedEvent is the event_type header of published orders
const OrderCreatedEvent = "order.created"

// MessageWriter is implemented by *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher is an order.Sink that writes orders to a Kafka topic keyed by order id
type OrderPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds the writer for the orders topic
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// NewOrderPublisher creates a publisher on top of writer
func NewOrderPublisher(writer MessageWriter) *OrderPublisher {
	return &OrderPublisher{writer: writer}
}

// Submit publishes the order as JSON
func (p *OrderPublisher) Submit(ctx context.Context, o *order.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode order %s: %w", o.OrderID, err)
	}

	msg := kafka.Message{
		Key:   []byte(o.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(OrderCreatedEvent)},
			{Key: "aggregate_type", Value: []byte("order")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", o.OrderID, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
