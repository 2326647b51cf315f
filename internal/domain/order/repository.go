package order

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Repository persists orders. FindByID returns nil without error when the id is unknown.
// UpdateStatus writes only while the stored status still equals from, and
// returns ErrInvalidStatusTransition when it does not.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}

// GormRepository stores orders in a SQL database with the items kept as a JSON column
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm backed order store
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first together with the total row count
func (r *GormRepository) List(ctx context.Context, limit, offset int) ([]Order, int64, error) {
	var (
		orders []Order
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&Order{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		offset = 0
	}

	if err := query.Order("created_at DESC, order_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus touches only the status column, guarded by the expected current status
func (r *GormRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("order_id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Where("order_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return ErrInvalidStatusTransition
}

// MemoryRepository keeps orders in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

// NewMemoryRepository creates an empty in-memory order store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]Order)}
}

func (r *MemoryRepository) Create(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.OrderID]; exists {
		return errors.New("duplicate order id")
	}
	r.orders[order.OrderID] = cloneOrder(*order)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	found := cloneOrder(stored)
	return &found, nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderID < orders[j].OrderID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	total := int64(len(orders))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(orders) {
		return []Order{}, total, nil
	}
	orders = orders[offset:]
	if limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	return orders, total, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Status != from {
		return ErrInvalidStatusTransition
	}
	stored.Status = to
	r.orders[id] = stored
	return nil
}

func cloneOrder(o Order) Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
