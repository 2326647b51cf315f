// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MinQuantity is the smallest quantity a cart row may hold
	MinQuantity = 1
	// MaxQuantity caps a single cart row
	MaxQuantity = 10000
)

// CartItem is one cart row. Name and UnitPrice are captured when the product is
// first added and are not refreshed from the catalog afterwards.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;uniqueIndex" json:"product_id"`
	Name      string          `gorm:"not null;size:256" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal returns UnitPrice * Quantity
func (c CartItem) Subtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Summary is a consistent view of the cart and its aggregates
type Summary struct {
	Items         []CartItem      `json:"items"`
	ItemCount     int             `json:"item_count"`     // Number of rows
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// IsEmpty reports whether the summary holds no rows
func (s Summary) IsEmpty() bool {
	return s.ItemCount == 0
}

func calculateTotals(items []CartItem) Summary {
	summary := Summary{
		Items:      items,
		ItemCount:  len(items),
		TotalPrice: decimal.Zero,
	}

	for _, item := range items {
		summary.TotalQuantity += item.Quantity
		summary.TotalPrice = summary.TotalPrice.Add(item.Subtotal())
	}

	return summary
}
