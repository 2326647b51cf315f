// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:256;index" json:"name"`
	Description string          `gorm:"size:2000" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	ImageURL    string          `gorm:"size:500" json:"image_url,omitempty"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// IsValid checks the catalog invariants: a name, a positive price and non-negative stock
func (p *Product) IsValid() bool {
	return p.Name != "" && p.Price.IsPositive() && p.Stock >= 0
}

// InStock checks whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// SampleProducts returns the development catalog
func SampleProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Laptop Dell XPS 13",
			Description: "Ultrabook powerful performance",
			Price:       decimal.RequireFromString("1299.99"),
			ImageURL:    "https://via.placeholder.com/300x300?text=Laptop+Dell",
			Stock:       15,
		},
		{
			ID:          2,
			Name:        "iPhone 15 Pro",
			Description: "Latest Apple smartphone",
			Price:       decimal.RequireFromString("999.99"),
			ImageURL:    "https://via.placeholder.com/300x300?text=iPhone+15",
			Stock:       25,
		},
		{
			ID:          3,
			Name:        "Samsung Galaxy S24",
			Description: "Android flagship device",
			Price:       decimal.RequireFromString("899.99"),
			ImageURL:    "https://via.placeholder.com/300x300?text=Samsung+S24",
			Stock:       30,
		},
		{
			ID:          4,
			Name:        "Sony WH-1000XM5 Headphones",
			Description: "Premium noise-canceling headphones",
			Price:       decimal.RequireFromString("399.99"),
			ImageURL:    "https://via.placeholder.com/300x300?text=Sony+Headphones",
			Stock:       50,
		},
		{
			ID:          5,
			Name:        "Apple AirPods Pro",
			Description: "Wireless earbuds with ANC",
			Price:       decimal.RequireFromString("249.99"),
			ImageURL:    "https://via.placeholder.com/300x300?text=AirPods+Pro",
			Stock:       40,
		},
	}
}
