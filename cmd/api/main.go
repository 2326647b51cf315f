// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/config"
	"github.com/your-org/store-backend/internal/domain/analytics"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/checkout"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/infrastructure/database/redis"
	"github.com/your-org/store-backend/internal/infrastructure/messaging"
	"github.com/your-org/store-backend/internal/interfaces/http"
	"github.com/your-org/store-backend/internal/interfaces/http/handlers"
	"github.com/your-org/store-backend/internal/interfaces/http/routes"
	"github.com/your-org/store-backend/internal/pkg/logger"
	"github.com/your-org/store-backend/internal/pkg/metrics"
	"github.com/your-org/store-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"driver":      cfg.Database.Driver,
	}).Info("Starting service")

	// Storage failures at startup are fatal
	st, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise storage")
	}
	defer st.Close()

	reg := metrics.NewRegistry()
	checks := map[string]http.HealthCheck{}
	if st.health != nil {
		checks["database"] = func(context.Context) error { return st.health() }
	}

	cartService := cart.NewService(st.cartRepo, log, cart.WithStockSource(st.catalog))
	cartService.Subscribe(reg.ObserveCart)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(context.Background(), cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()

		relay := messaging.NewCartEventRelay(redisClient.GetClient(), cfg.Redis.CartChannel, log)
		cartService.Subscribe(relay.Observe)
		checks["redis"] = redisClient.Health
	}

	orderService := order.NewService(st.orderRepo, log)
	sinks := []order.Sink{orderService, reg.OrderSink()}
	if cfg.Kafka.Enabled {
		publisher := messaging.NewOrderPublisher(messaging.NewKafkaWriter(cfg.Kafka))
		defer publisher.Close()
		sinks = append(sinks, order.BestEffort(publisher, "kafka", log))
	}

	checkoutService := checkout.NewService(cartService, st.catalog, order.FanOut(sinks...), log)
	receipts := pdf.NewService(cfg.Receipt)

	deps := http.Dependencies{
		Handlers: routes.Handlers{
			Product:   handlers.NewProductHandler(st.catalog),
			Cart:      handlers.NewCartHandler(cartService, st.catalog),
			Checkout:  handlers.NewCheckoutHandler(checkoutService),
			Order:     handlers.NewOrderHandler(orderService, receipts, log),
			Analytics: handlers.NewAnalyticsHandler(analytics.NewService(st.orderRepo, st.catalog, cfg.App.LowStockLevel)),
		},
		Metrics: reg,
		Checks:  checks,
	}
	if redisClient != nil {
		deps.Redis = redisClient.GetClient()
	}

	server := http.NewServer(cfg, deps, log)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
