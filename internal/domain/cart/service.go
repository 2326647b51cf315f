// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/domain/product"
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

// Service handles cart business logic. Every operation, reads included, runs
// under one mutex so merge-or-create decisions and stock checks never race.
// Observers are notified after the lock is released, in commit order. They may
// read the cart but must not mutate it.
type Service struct {
	mu       sync.Mutex
	delivery sync.Mutex
	repo     Repository
	notifier *Notifier
	stock    product.Catalog
	logger   logrus.FieldLogger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithStockSource makes UpdateItem validate quantities against current catalog stock
func WithStockSource(catalog product.Catalog) Option {
	return func(s *Service) {
		s.stock = catalog
	}
}

// WithClock overrides the time source used for row timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new cart service
func NewService(repo Repository, logger logrus.FieldLogger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Service{
		repo:     repo,
		notifier: NewNotifier(logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer for cart changes and returns its unsubscribe function
func (s *Service) Subscribe(observer Observer) func() {
	return s.notifier.Subscribe(observer)
}

// AddItem adds quantity units of p, merging into the existing row for the product
func (s *Service) AddItem(p *product.Product, quantity int) (*CartItem, error) {
	if p == nil {
		return nil, ErrProductRequired
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return nil, insufficientStock(p.Stock, false)
	}

	var (
		item   *CartItem
		merged bool
	)
	err := s.mutate(func() ([]ChangeEvent, error) {
		var err error
		if item, merged, err = s.addItem(p, quantity); err != nil {
			return nil, err
		}
		message := "Item added to cart"
		if merged {
			message = "Quantity updated"
		}
		return s.change(ChangeItemAdded, item, message), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_item_id": item.ID,
		"product_id":   item.ProductID,
		"quantity":     item.Quantity,
		"merged":       merged,
	}).Debug("Cart item added")

	return item, nil
}

// addItem, removeItem and updateItem run with s.mu held
func (s *Service) addItem(p *product.Product, quantity int) (*CartItem, bool, error) {
	existing, err := s.repo.FindByProductID(p.ID)
	if err != nil {
		return nil, false, apperror.Storage("add item", err)
	}

	now := s.now()

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > MaxQuantity {
			return nil, false, ErrInvalidQuantity
		}
		if newQuantity > p.Stock {
			return nil, false, insufficientStock(p.Stock, true)
		}

		updated := *existing
		updated.Quantity = newQuantity
		updated.UpdatedAt = now
		if err := s.repo.Update(&updated); err != nil {
			return nil, false, apperror.Storage("add item", err)
		}
		return &updated, true, nil
	}

	item := CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(&item); err != nil {
		return nil, false, apperror.Storage("add item", err)
	}
	return &item, false, nil
}

// RemoveItem deletes a cart row and reports whether it existed
func (s *Service) RemoveItem(cartItemID uint) (bool, error) {
	var removed bool
	err := s.mutate(func() ([]ChangeEvent, error) {
		item, err := s.removeItem(cartItemID)
		if err != nil || item == nil {
			return nil, err
		}
		removed = true
		return s.change(ChangeItemRemoved, item, "Item removed from cart"), nil
	})
	return removed, err
}

func (s *Service) removeItem(cartItemID uint) (*CartItem, error) {
	item, err := s.repo.FindByID(cartItemID)
	if err != nil {
		return nil, apperror.Storage("remove item", err)
	}
	if item == nil {
		return nil, nil
	}

	if _, err := s.repo.Delete(cartItemID); err != nil {
		return nil, apperror.Storage("remove item", err)
	}
	return item, nil
}

// UpdateItem sets the quantity of a cart row. Zero deletes the row and returns nil.
// Unknown ids return nil without error.
func (s *Service) UpdateItem(cartItemID uint, newQuantity int) (*CartItem, error) {
	if newQuantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if newQuantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	var updated *CartItem
	err := s.mutate(func() ([]ChangeEvent, error) {
		item, removed, err := s.updateItem(cartItemID, newQuantity)
		if err != nil || item == nil {
			return nil, err
		}
		if removed {
			return s.change(ChangeItemRemoved, item, "Item removed (quantity set to 0)"), nil
		}
		updated = item
		return s.change(ChangeQuantityChanged, item, fmt.Sprintf("Quantity updated to %d", newQuantity)), nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) updateItem(cartItemID uint, newQuantity int) (*CartItem, bool, error) {
	item, err := s.repo.FindByID(cartItemID)
	if err != nil {
		return nil, false, apperror.Storage("update item", err)
	}
	if item == nil {
		return nil, false, nil
	}

	if newQuantity == 0 {
		if _, err := s.repo.Delete(cartItemID); err != nil {
			return nil, false, apperror.Storage("update item", err)
		}
		return item, true, nil
	}

	if err := s.checkStock(item.ProductID, newQuantity); err != nil {
		return nil, false, err
	}

	item.Quantity = newQuantity
	item.UpdatedAt = s.now()
	if err := s.repo.Update(item); err != nil {
		return nil, false, apperror.Storage("update item", err)
	}
	return item, false, nil
}

func (s *Service) checkStock(productID uint, quantity int) error {
	if s.stock == nil {
		return nil
	}

	p, err := s.stock.GetProduct(productID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return insufficientStock(0, false)
		}
		return err
	}
	if quantity > p.Stock {
		return insufficientStock(p.Stock, false)
	}
	return nil
}

// GetCart returns all rows in insertion order
func (s *Service) GetCart() ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List()
	if err != nil {
		return nil, apperror.Storage("get cart", err)
	}
	if items == nil {
		items = []CartItem{}
	}
	return items, nil
}

// GetCartItem returns a single row, or nil when the id is unknown
func (s *Service) GetCartItem(cartItemID uint) (*CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.repo.FindByID(cartItemID)
	if err != nil {
		return nil, apperror.Storage("get cart item", err)
	}
	return item, nil
}

// ClearCart removes every row
func (s *Service) ClearCart() error {
	err := s.mutate(func() ([]ChangeEvent, error) {
		if err := s.repo.DeleteAll(); err != nil {
			return nil, apperror.Storage("clear cart", err)
		}
		return s.change(ChangeCartCleared, nil, "Cart cleared"), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cart cleared")
	return nil
}

// ClearItems removes the given rows by id and leaves any other row in place.
// Rows already gone are skipped. Emits CartCleared when the cart ends up empty,
// otherwise one ItemRemoved per deleted row, and nothing when no row matched.
func (s *Service) ClearItems(items []CartItem) error {
	if len(items) == 0 {
		return nil
	}

	var (
		removed   []CartItem
		remaining int
	)
	err := s.mutate(func() ([]ChangeEvent, error) {
		ids := make([]uint, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}

		var err error
		if removed, err = s.repo.DeleteByIDs(ids); err != nil {
			return nil, apperror.Storage("clear items", err)
		}
		if len(removed) == 0 {
			return nil, nil
		}
		rest, err := s.repo.List()
		if err != nil {
			return nil, apperror.Storage("clear items", err)
		}
		remaining = len(rest)

		if remaining == 0 {
			return s.change(ChangeCartCleared, nil, "Cart cleared"), nil
		}
		events := make([]ChangeEvent, 0, len(removed))
		for i := range removed {
			events = append(events, s.change(ChangeItemRemoved, &removed[i], "Item removed from cart")...)
		}
		return events, nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"removed":   len(removed),
		"remaining": remaining,
	}).Info("Cart items cleared")
	return nil
}

// GetSummary returns the rows and their aggregates from a single read
func (s *Service) GetSummary() (Summary, error) {
	items, err := s.GetCart()
	if err != nil {
		return Summary{}, err
	}
	return calculateTotals(items), nil
}

// GetTotalQuantity returns the sum of all row quantities
func (s *Service) GetTotalQuantity() (int, error) {
	summary, err := s.GetSummary()
	if err != nil {
		return 0, err
	}
	return summary.TotalQuantity, nil
}

// GetTotalPrice returns the sum of UnitPrice * Quantity over all rows.
// Computed here rather than with a SQL SUM to keep decimal precision.
func (s *Service) GetTotalPrice() (decimal.Decimal, error) {
	summary, err := s.GetSummary()
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalPrice, nil
}

// IsEmpty reports whether the cart holds no rows
func (s *Service) IsEmpty() (bool, error) {
	summary, err := s.GetSummary()
	if err != nil {
		return false, err
	}
	return summary.IsEmpty(), nil
}

// mutate runs fn under the store lock and delivers the events it returns once
// the lock is released. The delivery lock is taken before the store lock is
// dropped, so events reach observers in the order their changes committed.
func (s *Service) mutate(fn func() ([]ChangeEvent, error)) error {
	events, err := s.commit(fn)
	if err != nil || len(events) == 0 {
		return err
	}

	defer s.delivery.Unlock()
	for _, event := range events {
		s.notifier.Notify(event)
	}
	return nil
}

func (s *Service) commit(fn func() ([]ChangeEvent, error)) ([]ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := fn()
	if err != nil || len(events) == 0 {
		return nil, err
	}
	s.delivery.Lock()
	return events, nil
}

func (s *Service) change(changeType ChangeType, item *CartItem, message string) []ChangeEvent {
	return []ChangeEvent{{
		Type:       changeType,
		Item:       item,
		Message:    message,
		OccurredAt: s.now(),
	}}
}
