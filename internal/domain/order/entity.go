// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// ParseStatus validates a status name
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Order is the immutable record derived from a cart at checkout.
// Only Status changes after creation.
type Order struct {
	OrderID         string                         `gorm:"primaryKey;size:32" json:"order_id"`
	CustomerName    string                         `gorm:"not null;size:256" json:"customer_name"`
	CustomerAddress string                         `gorm:"not null;size:512" json:"customer_address"`
	CustomerPhone   string                         `gorm:"not null;size:20" json:"customer_phone"`
	Items           datatypes.JSONSlice[OrderItem] `gorm:"not null" json:"items"`
	Total           decimal.Decimal                `gorm:"type:decimal(18,2);not null" json:"total"`
	Status          Status                         `gorm:"not null;size:50;default:'Pending';index" json:"status"`
	Notes           string                         `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt       time.Time                      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// OrderItem is a point-in-time copy of a cart row
type OrderItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// TableName overrides the table name
func (Order) TableName() string { return "orders" }

// Subtotal returns UnitPrice * Quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemCount returns the number of order lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the number of units across all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// CanTransitionTo checks the fulfilment state machine
func (o *Order) CanTransitionTo(next Status) bool {
	switch o.Status {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.CanTransitionTo(StatusCancelled)
}

// IsFinal checks if the order reached a terminal status
func (o *Order) IsFinal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

func (o *Order) String() string {
	return fmt.Sprintf("Order %s: %s, $%s, %d items", o.OrderID, o.CustomerName, o.Total.StringFixed(2), len(o.Items))
}
