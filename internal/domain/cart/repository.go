package cart

import (
	"errors"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Repository is the cart store. Lookups return nil without error when no row matches.
// Only Service writes through it.
type Repository interface {
	FindByID(id uint) (*CartItem, error)
	FindByProductID(productID uint) (*CartItem, error)
	List() ([]CartItem, error)
	Create(item *CartItem) error
	Update(item *CartItem) error
	Delete(id uint) (bool, error)
	DeleteByIDs(ids []uint) ([]CartItem, error)
	DeleteAll() error
}

// GormRepository stores cart rows in a SQL database
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm backed cart store
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByID(id uint) (*CartItem, error) {
	return r.first(r.db.Where("id = ?", id))
}

func (r *GormRepository) FindByProductID(productID uint) (*CartItem, error) {
	return r.first(r.db.Where("product_id = ?", productID))
}

func (r *GormRepository) first(query *gorm.DB) (*CartItem, error) {
	var item CartItem
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormRepository) List() ([]CartItem, error) {
	var items []CartItem
	if err := r.db.Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepository) Create(item *CartItem) error {
	return r.db.Create(item).Error
}

func (r *GormRepository) Update(item *CartItem) error {
	return r.db.Model(&CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":   item.Quantity,
			"updated_at": item.UpdatedAt,
		}).Error
}

func (r *GormRepository) Delete(id uint) (bool, error) {
	result := r.db.Where("id = ?", id).Delete(&CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByIDs removes the listed rows in one transaction and returns those that existed
func (r *GormRepository) DeleteByIDs(ids []uint) ([]CartItem, error) {
	var deleted []CartItem
	if len(ids) == 0 {
		return deleted, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Order("created_at ASC, id ASC").Find(&deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		found := make([]uint, 0, len(deleted))
		for _, item := range deleted {
			found = append(found, item.ID)
		}
		return tx.Where("id IN ?", found).Delete(&CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteAll removes every row in a single transaction
func (r *GormRepository) DeleteAll() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CartItem{}).Error
	})
}

// MemoryRepository keeps cart rows in process memory
type MemoryRepository struct {
	mu     sync.Mutex
	items  map[uint]CartItem
	nextID uint
}

// NewMemoryRepository creates an empty in-memory cart store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uint]CartItem)}
}

func (r *MemoryRepository) FindByID(id uint) (*CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *MemoryRepository) FindByProductID(productID uint) (*CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List() ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]CartItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) Create(item *CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.ProductID == item.ProductID {
			return errors.New("duplicate cart row for product")
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryRepository) Update(item *CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ID]
	if !ok {
		return errors.New("cart row not found")
	}
	stored.Quantity = item.Quantity
	stored.UpdatedAt = item.UpdatedAt
	r.items[item.ID] = stored
	return nil
}

func (r *MemoryRepository) Delete(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepository) DeleteByIDs(ids []uint) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := make([]CartItem, 0, len(ids))
	for _, id := range ids {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		deleted = append(deleted, item)
		delete(r.items, id)
	}
	return deleted, nil
}

func (r *MemoryRepository) DeleteAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[uint]CartItem)
	return nil
}
