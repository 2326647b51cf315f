// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/config"
)

// Client wraps the Redis client shared by the cart event relay and the rate limiter
type Client struct {
	Redis *redis.Client
	addr  string
}

func options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// NewConnection dials Redis and fails unless the first ping succeeds
func NewConnection(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Client, error) {
	c := &Client{
		Redis: redis.NewClient(options(cfg)),
		addr:  cfg.GetRedisAddr(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Health(pingCtx); err != nil {
		_ = c.Redis.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", c.addr, err)
	}

	logger.WithFields(logrus.Fields{
		"addr":         c.addr,
		"db":           cfg.Redis.DB,
		"cart_channel": cfg.Redis.CartChannel,
	}).Info("Redis connection established")
	return c, nil
}

func (c *Client) Close() error {
	return c.Redis.Close()
}

func (c *Client) GetClient() *redis.Client {
	return c.Redis
}

// Health pings the server within ctx
func (c *Client) Health(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}
