package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/order"
)

// Registry holds the service collectors
type Registry struct {
	reg           *prometheus.Registry
	CartEvents    *prometheus.CounterVec
	OrdersPlaced  prometheus.Counter
	OrderValue    prometheus.Counter
	OrderLines    prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	HTTPLatencies *prometheus.HistogramVec
}

// NewRegistry creates a registry with the store collectors and the Go runtime collectors
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	cartEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_cart_events_total",
		Help: "Cart change notifications by type",
	}, []string{"type"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_placed_total",
		Help: "Orders accepted by the order sink",
	})
	orderValue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_order_value_total",
		Help: "Sum of order totals",
	})
	orderLines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_order_lines",
		Help:    "Lines per order",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	httpLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(
		cartEvents, ordersPlaced, orderValue, orderLines, httpRequests, httpLatencies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		reg:           r,
		CartEvents:    cartEvents,
		OrdersPlaced:  ordersPlaced,
		OrderValue:    orderValue,
		OrderLines:    orderLines,
		HTTPRequests:  httpRequests,
		HTTPLatencies: httpLatencies,
	}
}

// ObserveCart is a cart.Observer counting change events
func (r *Registry) ObserveCart(event cart.ChangeEvent) {
	r.CartEvents.WithLabelValues(string(event.Type)).Inc()
}

// OrderSink counts orders passing through to the next sink
func (r *Registry) OrderSink() order.Sink {
	return order.SinkFunc(func(_ context.Context, o *order.Order) error {
		r.OrdersPlaced.Inc()
		r.OrderValue.Add(o.Total.InexactFloat64())
		r.OrderLines.Observe(float64(o.ItemCount()))
		return nil
	})
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
