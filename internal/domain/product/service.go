// internal/domain/product/service.go
package product

import (
	"errors"
	"sort"
	"sync"

	"github.com/your-org/store-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product id is unknown to the catalog
var ErrProductNotFound = apperror.New(apperror.KindNotFound, "product not found")

// Catalog is the read-only view of products used by the cart
type Catalog interface {
	GetProduct(id uint) (*Product, error)
	ListProducts() ([]Product, error)
}

// Service serves the catalog from the database
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperror.Storage("get product", result.Error)
	}

	return &product, nil
}

// ListProducts retrieves every product ordered by ID
func (s *Service) ListProducts() ([]Product, error) {
	var products []Product
	if err := s.db.Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperror.Storage("list products", err)
	}
	return products, nil
}

// Count returns the number of products in the catalog
func (s *Service) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Product{}).Count(&count).Error; err != nil {
		return 0, apperror.Storage("count products", err)
	}
	return count, nil
}

// MemoryCatalog is an in-process catalog used with the memory store
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[uint]Product
}

// NewMemoryCatalog creates a catalog holding the given products
func NewMemoryCatalog(products ...Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[uint]Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// GetProduct returns a copy of the product
func (c *MemoryCatalog) GetProduct(id uint) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// ListProducts returns all products ordered by ID
func (c *MemoryCatalog) ListProducts() ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// SetStock changes the available units of a product
func (c *MemoryCatalog) SetStock(id uint, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	c.products[id] = p
	return nil
}
