package order

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/pkg/apperror"
	"gorm.io/datatypes"
)

const maxNotesLength = 1000

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,20}$`)

// Customer holds the checkout form fields
type Customer struct {
	Name    string `json:"customer_name" validate:"required,max=256"`
	Address string `json:"customer_address" validate:"required,max=512"`
	Phone   string `json:"customer_phone" validate:"required,phone"`
}

// Deriver builds orders from cart snapshots. Apart from the id and timestamp
// it draws, the mapping is deterministic.
type Deriver struct {
	Now      func() time.Time
	NewID    func() string
	validate *validator.Validate
}

// NewDeriver creates a Deriver using random ids and the wall clock
func NewDeriver() *Deriver {
	return &Deriver{
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    NewOrderID,
		validate: newValidator(),
	}
}

var defaultDeriver = NewDeriver()

// CreateOrderFromCart freezes a cart snapshot into a new Pending order
func CreateOrderFromCart(items []cart.CartItem, customer Customer, notes string) (*Order, error) {
	return defaultDeriver.CreateOrderFromCart(items, customer, notes)
}

// NewOrderID returns 32 lowercase hex characters from a random UUID
func NewOrderID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// CreateOrderFromCart freezes a cart snapshot into a new Pending order.
// The total is always the sum of the mapped line subtotals.
func (d *Deriver) CreateOrderFromCart(items []cart.CartItem, customer Customer, notes string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	customer = Customer{
		Name:    strings.TrimSpace(customer.Name),
		Address: strings.TrimSpace(customer.Address),
		Phone:   strings.TrimSpace(customer.Phone),
	}
	if err := d.validateCustomer(customer); err != nil {
		return nil, err
	}

	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, apperror.Newf(apperror.KindInvalidInput, "notes cannot exceed %d characters", maxNotesLength)
	}

	lines := make([]OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < cart.MinQuantity || !item.UnitPrice.IsPositive() {
			return nil, ErrInvalidLine
		}

		line := OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
		lines = append(lines, line)
		total = total.Add(line.Subtotal())
	}

	return &Order{
		OrderID:         d.NewID(),
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		CustomerPhone:   customer.Phone,
		Items:           datatypes.NewJSONSlice(lines),
		Total:           total,
		Status:          StatusPending,
		Notes:           notes,
		CreatedAt:       d.Now(),
	}, nil
}

func (d *Deriver) validateCustomer(customer Customer) error {
	v := d.validate
	if v == nil {
		v = defaultDeriver.validate
	}

	err := v.Struct(customer)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Wrap(apperror.KindInvalidCustomer, ErrInvalidCustomer.Message, err)
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "max":
		msg = fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "phone":
		msg = fmt.Sprintf("%s must be 10-20 digits, spaces or +-() characters", fe.Field())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperror.New(apperror.KindInvalidCustomer, msg)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}
