// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service handles order persistence and fulfilment status
type Service struct {
	repo   Repository
	logger logrus.FieldLogger
}

// NewService creates a new order service
func NewService(repo Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// StatusUpdateRequest represents a fulfilment status change
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// Submit stores a freshly derived order. Service is the system-of-record Sink.
func (s *Service) Submit(ctx context.Context, order *Order) error {
	if order == nil || len(order.Items) == 0 {
		return ErrEmptyCart
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return apperror.Storage("order create", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"items":    order.ItemCount(),
		"total":    order.Total.StringFixed(2),
	}).Info("Order stored")
	return nil
}

// GetOrder retrieves a single order by id
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrOrderNotFound
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("order lookup", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders retrieves orders newest first with pagination
func (s *Service) ListOrders(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	page, limit := 1, defaultPageLimit
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.Limit > 0 {
			limit = req.Limit
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	// Keep (page-1)*limit representable; anything past it is beyond the last row anyway
	if page > math.MaxInt32/limit {
		page = math.MaxInt32 / limit
	}

	offset := (page - 1) * limit
	orders, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Storage("order list", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// UpdateStatus moves an order along the fulfilment state machine.
// Items and total are never rewritten.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if _, err := ParseStatus(string(next)); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, order.Status, next)
	}

	// The write only lands while the row still holds the status checked above
	if err := s.repo.UpdateStatus(ctx, order.OrderID, order.Status, next); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, err
		}
		if apperror.IsKind(err, apperror.KindInvalidState) {
			return nil, fmt.Errorf("%w from %s to %s: order changed concurrently", ErrInvalidStatusTransition, order.Status, next)
		}
		return nil, apperror.Storage("order status update", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"from":     order.Status,
		"to":       next,
	}).Info("Order status updated")

	order.Status = next
	return order, nil
}
