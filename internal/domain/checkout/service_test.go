package checkout_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/checkout"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/domain/product"
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var form = &checkout.PlaceOrderRequest{
	CustomerName:    "Jane Doe",
	CustomerAddress: "12 Market Street",
	CustomerPhone:   "555-010-2030",
	Notes:           "ring twice",
}

type fixture struct {
	cart    *cart.Service
	catalog *product.MemoryCatalog
	orders  *order.Service
	svc     *checkout.Service
}

func newFixture(t *testing.T, sink order.Sink) *fixture {
	t.Helper()

	f := &fixture{
		cart:    cart.NewService(cart.NewMemoryRepository(), quietLogger()),
		catalog: product.NewMemoryCatalog(product.SampleProducts()...),
		orders:  order.NewService(order.NewMemoryRepository(), quietLogger()),
	}
	if sink == nil {
		sink = f.orders
	}
	f.svc = checkout.NewService(f.cart, f.catalog, sink, quietLogger())
	return f
}

func (f *fixture) add(t *testing.T, id uint, qty int) {
	t.Helper()
	p, err := f.catalog.GetProduct(id)
	require.NoError(t, err)
	_, err = f.cart.AddItem(p, qty)
	require.NoError(t, err)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, 1, 3)
	f.add(t, 2, 2)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d := order.NewDeriver()
	d.Now = func() time.Time { return at }
	f.svc.WithDeriver(d)

	placed, err := f.svc.PlaceOrder(context.Background(), form)
	require.NoError(t, err)
	assert.True(t, placed.Total.Equal(decimal.RequireFromString("5899.95")), "got %s", placed.Total)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, at, placed.CreatedAt)
	assert.Equal(t, "ring twice", placed.Notes)

	empty, err := f.cart.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	stored, err := f.orders.GetOrder(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.PlaceOrder(context.Background(), form)
	assert.True(t, errors.Is(err, order.ErrEmptyCart))

	resp, err := f.orders.ListOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
}

func TestPlaceOrder_InvalidCustomerKeepsCart(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, 3, 1)

	bad := *form
	bad.CustomerPhone = "12"
	_, err := f.svc.PlaceOrder(context.Background(), &bad)
	assert.Equal(t, apperror.KindInvalidCustomer, apperror.KindOf(err))

	qty, err := f.cart.GetTotalQuantity()
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestPlaceOrder_SinkFailureKeepsCart(t *testing.T) {
	failing := order.SinkFunc(func(context.Context, *order.Order) error {
		return apperror.Storage("order create", errors.New("connection refused"))
	})
	f := newFixture(t, failing)
	f.add(t, 4, 2)

	_, err := f.svc.PlaceOrder(context.Background(), form)
	assert.Equal(t, apperror.KindStorageFailure, apperror.KindOf(err))

	items, err := f.cart.GetCart()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPlaceOrder_CartChangesAfterwardDoNotTouchOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, 5, 1)

	placed, err := f.svc.PlaceOrder(context.Background(), form)
	require.NoError(t, err)

	f.add(t, 5, 4)
	stored, err := f.orders.GetOrder(context.Background(), placed.OrderID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestGetCheckoutSummary(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetCheckoutSummary()
	assert.True(t, errors.Is(err, order.ErrEmptyCart))

	f.add(t, 2, 2)
	summary, err := f.svc.GetCheckoutSummary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Cart.TotalQuantity)
	assert.True(t, summary.Cart.TotalPrice.Equal(decimal.RequireFromString("1999.98")))
}

func TestValidateCheckout(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, 1, 10)
	require.NoError(t, f.catalog.SetStock(1, 4))

	validation, err := f.svc.ValidateCheckout(form)
	require.NoError(t, err)
	assert.True(t, validation.IsValid)
	require.Len(t, validation.Warnings, 1)
	assert.Contains(t, validation.Warnings[0], "Available: 4")

	bad := *form
	bad.CustomerName = ""
	validation, err = f.svc.ValidateCheckout(&bad)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.NotEmpty(t, validation.Errors)

	qty, err := f.cart.GetTotalQuantity()
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
}

func TestPlaceOrder_KeepsRowsAddedDuringSubmit(t *testing.T) {
	var f *fixture
	slow := order.SinkFunc(func(ctx context.Context, o *order.Order) error {
		// another request adds to the cart while the order is being stored
		f.add(t, 3, 2)
		return f.orders.Submit(ctx, o)
	})
	f = newFixture(t, slow)
	f.add(t, 1, 1)

	placed, err := f.svc.PlaceOrder(context.Background(), form)
	require.NoError(t, err)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, uint(1), placed.Items[0].ProductID)

	items, err := f.cart.GetCart()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(3), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}
