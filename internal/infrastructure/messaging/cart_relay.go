package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/domain/cart"
)

// Publisher is the subset of the Redis client the relay needs
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// CartEventRelay forwards cart change events to a Redis pub/sub channel
type CartEventRelay struct {
	publisher Publisher
	channel   string
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// NewCartEventRelay creates a relay publishing on channel
func NewCartEventRelay(publisher Publisher, channel string, logger logrus.FieldLogger) *CartEventRelay {
	return &CartEventRelay{
		publisher: publisher,
		channel:   channel,
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// Observe is a cart.Observer. Publish failures are logged; the cart change
// has already been committed.
func (r *CartEventRelay) Observe(event cart.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.WithError(err).Error("Failed to encode cart event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.WithError(err).
			WithFields(logrus.Fields{"channel": r.channel, "type": event.Type}).
			Warn("Failed to relay cart event")
	}
}
