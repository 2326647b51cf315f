// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/domain/product"
)

// Service turns the current cart into an order
type Service struct {
	cartService *cart.Service
	catalog     product.Catalog
	deriver     *order.Deriver
	sink        order.Sink
	logger      logrus.FieldLogger
}

// NewService creates a new checkout service. catalog may be nil, in which case
// ValidateCheckout reports no stock warnings.
func NewService(cartService *cart.Service, catalog product.Catalog, sink order.Sink, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		cartService: cartService,
		catalog:     catalog,
		deriver:     order.NewDeriver(),
		sink:        sink,
		logger:      logger,
	}
}

// WithDeriver replaces the order builder
func (s *Service) WithDeriver(d *order.Deriver) *Service {
	s.deriver = d
	return s
}

// PlaceOrderRequest represents the checkout form
type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
	Notes           string `json:"notes,omitempty"`
}

// CheckoutSummary represents what would be ordered right now
type CheckoutSummary struct {
	Cart cart.Summary `json:"cart"`
}

// CheckoutValidation represents checkout validation result
type CheckoutValidation struct {
	IsValid  bool             `json:"is_valid"`
	Errors   []string         `json:"errors,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Summary  *CheckoutSummary `json:"summary,omitempty"`
}

// PlaceOrder derives an order from one cart snapshot, hands it to the sink and
// then removes the snapshot's rows. Rows added while the sink was working stay
// in the cart. A failed clear does not undo the order.
func (s *Service) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*order.Order, error) {
	items, err := s.cartService.GetCart()
	if err != nil {
		return nil, err
	}

	customer := order.Customer{
		Name:    req.CustomerName,
		Address: req.CustomerAddress,
		Phone:   req.CustomerPhone,
	}
	placed, err := s.deriver.CreateOrderFromCart(items, customer, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.sink.Submit(ctx, placed); err != nil {
		return nil, err
	}

	if err := s.cartService.ClearItems(items); err != nil {
		s.logger.WithError(err).
			WithField("order_id", placed.OrderID).
			Warn("Failed to clear cart after order creation")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": placed.OrderID,
		"items":    placed.ItemCount(),
		"total":    placed.Total.StringFixed(2),
	}).Info("Order placed")
	return placed, nil
}

// GetCheckoutSummary returns the cart that PlaceOrder would use
func (s *Service) GetCheckoutSummary() (*CheckoutSummary, error) {
	summary, err := s.cartService.GetSummary()
	if err != nil {
		return nil, err
	}
	if summary.IsEmpty() {
		return nil, order.ErrEmptyCart
	}
	return &CheckoutSummary{Cart: summary}, nil
}

// ValidateCheckout checks the cart and the form without placing anything
func (s *Service) ValidateCheckout(req *PlaceOrderRequest) (*CheckoutValidation, error) {
	validation := &CheckoutValidation{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	summary, err := s.cartService.GetSummary()
	if err != nil {
		return nil, err
	}
	validation.Summary = &CheckoutSummary{Cart: summary}

	customer := order.Customer{
		Name:    req.CustomerName,
		Address: req.CustomerAddress,
		Phone:   req.CustomerPhone,
	}
	if _, err := s.deriver.CreateOrderFromCart(summary.Items, customer, req.Notes); err != nil {
		validation.IsValid = false
		validation.Errors = append(validation.Errors, err.Error())
	}

	if s.catalog == nil {
		return validation, nil
	}

	for _, item := range summary.Items {
		p, err := s.catalog.GetProduct(item.ProductID)
		if err != nil {
			validation.Warnings = append(validation.Warnings,
				fmt.Sprintf("%s is no longer available", item.Name))
			continue
		}
		if p.Stock < item.Quantity {
			validation.Warnings = append(validation.Warnings,
				fmt.Sprintf("Limited stock for %s. Available: %d", item.Name, p.Stock))
		}
	}

	return validation, nil
}
