package cart_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/product"
	"github.com/your-org/store-backend/internal/pkg/apperror"
	"golang.org/x/sync/errgroup"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newProduct(id uint, price string, stock int) *product.Product {
	return &product.Product{
		ID:    id,
		Name:  "Product",
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

// steppingClock returns strictly increasing timestamps so insertion order is observable
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(opts ...cart.Option) *cart.Service {
	opts = append([]cart.Option{cart.WithClock(steppingClock())}, opts...)
	return cart.NewService(cart.NewMemoryRepository(), quietLogger(), opts...)
}

func TestCartService_CheckoutScenario(t *testing.T) {
	svc := newTestService()

	laptop := newProduct(1, "1299.99", 15)
	phone := newProduct(2, "999.99", 25)

	item1, err := svc.AddItem(laptop, 1)
	require.NoError(t, err)

	qty, err := svc.GetTotalQuantity()
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
	total, err := svc.GetTotalPrice()
	require.NoError(t, err)
	assert.Equal(t, "1299.99", total.StringFixed(2))

	_, err = svc.AddItem(phone, 2)
	require.NoError(t, err)

	qty, _ = svc.GetTotalQuantity()
	assert.Equal(t, 3, qty)
	total, _ = svc.GetTotalPrice()
	assert.True(t, total.Equal(decimal.RequireFromString("3299.97")), "got %s", total)

	_, err = svc.UpdateItem(item1.ID, 3)
	require.NoError(t, err)
	total, _ = svc.GetTotalPrice()
	assert.True(t, total.Equal(decimal.RequireFromString("5899.95")), "got %s", total)

	require.NoError(t, svc.ClearCart())
	empty, err := svc.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestCartService_AddItem(t *testing.T) {
	t.Run("creates_single_row", func(t *testing.T) {
		svc := newTestService()
		p := newProduct(7, "10.50", 8)

		for q := 1; q <= p.Stock; q++ {
			require.NoError(t, svc.ClearCart())
			_, err := svc.AddItem(p, q)
			require.NoError(t, err)

			items, err := svc.GetCart()
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, p.ID, items[0].ProductID)
			assert.Equal(t, q, items[0].Quantity)
		}
	})

	t.Run("merges_same_product", func(t *testing.T) {
		svc := newTestService()
		p := newProduct(1, "5.00", 10)

		first, err := svc.AddItem(p, 3)
		require.NoError(t, err)
		second, err := svc.AddItem(p, 4)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 7, second.Quantity)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

		items, _ := svc.GetCart()
		require.Len(t, items, 1)
		assert.Equal(t, 7, items[0].Quantity)
	})

	t.Run("merge_over_stock_keeps_row", func(t *testing.T) {
		svc := newTestService()
		p := newProduct(1, "5.00", 10)

		item, err := svc.AddItem(p, 6)
		require.NoError(t, err)

		_, err = svc.AddItem(p, 5)
		assert.ErrorIs(t, err, cart.ErrInsufficientStock)

		stored, err := svc.GetCartItem(item.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, stored.Quantity)
	})

	t.Run("over_stock_leaves_cart_empty", func(t *testing.T) {
		svc := newTestService()

		_, err := svc.AddItem(newProduct(1, "100", 5), 10)
		assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

		empty, _ := svc.IsEmpty()
		assert.True(t, empty)
	})

	t.Run("invalid_quantity", func(t *testing.T) {
		svc := newTestService()
		p := newProduct(1, "1.00", 20000)

		for _, q := range []int{0, -1, cart.MaxQuantity + 1} {
			_, err := svc.AddItem(p, q)
			assert.ErrorIs(t, err, cart.ErrInvalidQuantity, "quantity %d", q)
		}

		_, err := svc.AddItem(p, cart.MaxQuantity)
		require.NoError(t, err)
		_, err = svc.AddItem(p, 1)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})

	t.Run("nil_product", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.AddItem(nil, 1)
		assert.ErrorIs(t, err, cart.ErrProductRequired)
	})

	t.Run("snapshots_name_and_price", func(t *testing.T) {
		svc := newTestService()
		p := newProduct(1, "20.00", 10)
		p.Name = "Original"

		_, err := svc.AddItem(p, 1)
		require.NoError(t, err)

		p.Name = "Renamed"
		p.Price = decimal.RequireFromString("99.00")
		item, err := svc.AddItem(p, 1)
		require.NoError(t, err)

		assert.Equal(t, "Original", item.Name)
		assert.Equal(t, "20.00", item.UnitPrice.StringFixed(2))
		total, _ := svc.GetTotalPrice()
		assert.Equal(t, "40.00", total.StringFixed(2))
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	t.Run("zero_removes_row", func(t *testing.T) {
		svc := newTestService()
		item, err := svc.AddItem(newProduct(1, "3.00", 5), 2)
		require.NoError(t, err)

		updated, err := svc.UpdateItem(item.ID, 0)
		require.NoError(t, err)
		assert.Nil(t, updated)

		got, err := svc.GetCartItem(item.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
		items, _ := svc.GetCart()
		assert.Empty(t, items)
	})

	t.Run("negative_rejected", func(t *testing.T) {
		svc := newTestService()
		item, _ := svc.AddItem(newProduct(1, "3.00", 5), 2)

		_, err := svc.UpdateItem(item.ID, -1)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidQuantity))

		got, _ := svc.GetCartItem(item.ID)
		assert.Equal(t, 2, got.Quantity)
	})

	t.Run("unknown_id", func(t *testing.T) {
		svc := newTestService()
		updated, err := svc.UpdateItem(404, 3)
		assert.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("sets_quantity", func(t *testing.T) {
		svc := newTestService()
		item, _ := svc.AddItem(newProduct(1, "3.00", 5), 1)

		updated, err := svc.UpdateItem(item.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Quantity)
		assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
	})

	t.Run("checks_current_stock", func(t *testing.T) {
		catalog := product.NewMemoryCatalog(*newProduct(1, "3.00", 5))
		svc := newTestService(cart.WithStockSource(catalog))

		p, _ := catalog.GetProduct(1)
		item, err := svc.AddItem(p, 2)
		require.NoError(t, err)

		require.NoError(t, catalog.SetStock(1, 3))
		_, err = svc.UpdateItem(item.ID, 4)
		assert.ErrorIs(t, err, cart.ErrInsufficientStock)

		updated, err := svc.UpdateItem(item.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Quantity)
	})
}

func TestCartService_RemoveItem(t *testing.T) {
	svc := newTestService()
	a, _ := svc.AddItem(newProduct(1, "1.25", 10), 2)
	_, _ = svc.AddItem(newProduct(2, "2.50", 10), 1)

	removed, err := svc.RemoveItem(a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.RemoveItem(a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	total, _ := svc.GetTotalPrice()
	assert.Equal(t, "2.50", total.StringFixed(2))
}

func TestCartService_GetCartOrder(t *testing.T) {
	svc := newTestService()
	for id := uint(5); id >= 1; id-- {
		_, err := svc.AddItem(newProduct(id, "1.00", 10), 1)
		require.NoError(t, err)
	}

	items, err := svc.GetCart()
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.Before(items[i].CreatedAt))
	}
	assert.Equal(t, uint(5), items[0].ProductID)
}

func TestCartService_Summary(t *testing.T) {
	svc := newTestService()
	_, _ = svc.AddItem(newProduct(1, "0.10", 100), 3)
	_, _ = svc.AddItem(newProduct(2, "0.20", 100), 1)

	summary, err := svc.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, 4, summary.TotalQuantity)
	// 0.1 * 3 + 0.2 drifts in float64
	assert.True(t, summary.TotalPrice.Equal(decimal.RequireFromString("0.50")))
}

func TestCartService_Notifications(t *testing.T) {
	svc := newTestService()

	var events []cart.ChangeEvent
	unsubscribe := svc.Subscribe(func(e cart.ChangeEvent) {
		events = append(events, e)
	})

	p := newProduct(1, "4.00", 10)
	item, _ := svc.AddItem(p, 1)
	_, _ = svc.AddItem(p, 1)
	_, _ = svc.UpdateItem(item.ID, 5)
	_, _ = svc.UpdateItem(item.ID, 0)
	_, _ = svc.RemoveItem(item.ID)
	_ = svc.ClearCart()

	require.Len(t, events, 5)
	assert.Equal(t, cart.ChangeItemAdded, events[0].Type)
	assert.Equal(t, "Item added to cart", events[0].Message)
	assert.Equal(t, cart.ChangeItemAdded, events[1].Type)
	assert.Equal(t, "Quantity updated", events[1].Message)
	assert.Equal(t, cart.ChangeQuantityChanged, events[2].Type)
	assert.Equal(t, "Quantity updated to 5", events[2].Message)
	assert.Equal(t, cart.ChangeItemRemoved, events[3].Type)
	assert.Equal(t, cart.ChangeCartCleared, events[4].Type)
	assert.Nil(t, events[4].Item)

	unsubscribe()
	_, _ = svc.AddItem(p, 1)
	assert.Len(t, events, 5)
}

func TestCartService_NotifiesAfterCommit(t *testing.T) {
	svc := newTestService()

	var seen []int
	svc.Subscribe(func(e cart.ChangeEvent) {
		// observers may call back into the service
		qty, err := svc.GetTotalQuantity()
		require.NoError(t, err)
		seen = append(seen, qty)
	})

	p := newProduct(1, "1.00", 10)
	_, _ = svc.AddItem(p, 2)
	_, _ = svc.AddItem(p, 3)

	assert.Equal(t, []int{2, 5}, seen)
}

func TestCartService_ClearItems(t *testing.T) {
	svc := newTestService()

	var events []cart.ChangeEvent
	svc.Subscribe(func(e cart.ChangeEvent) { events = append(events, e) })

	laptop, err := svc.AddItem(newProduct(1, "1299.99", 15), 1)
	require.NoError(t, err)
	phone, err := svc.AddItem(newProduct(2, "999.99", 25), 2)
	require.NoError(t, err)

	snapshot, err := svc.GetCart()
	require.NoError(t, err)

	// a row added after the snapshot was taken
	tablet, err := svc.AddItem(newProduct(3, "899.99", 30), 1)
	require.NoError(t, err)

	events = nil
	require.NoError(t, svc.ClearItems(snapshot))

	items, err := svc.GetCart()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, tablet.ID, items[0].ID)

	require.Len(t, events, 2)
	for i, id := range []uint{laptop.ID, phone.ID} {
		assert.Equal(t, cart.ChangeItemRemoved, events[i].Type)
		require.NotNil(t, events[i].Item)
		assert.Equal(t, id, events[i].Item.ID)
	}

	events = nil
	require.NoError(t, svc.ClearItems(items))
	require.Len(t, events, 1)
	assert.Equal(t, cart.ChangeCartCleared, events[0].Type)

	events = nil
	require.NoError(t, svc.ClearItems(snapshot))
	require.NoError(t, svc.ClearItems(nil))
	assert.Empty(t, events)
}

func TestCartService_DeliversInCommitOrder(t *testing.T) {
	svc := newTestService()
	item, err := svc.AddItem(newProduct(1, "1.00", 1000), 1)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen []cart.CartItem
	)
	svc.Subscribe(func(e cart.ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, *e.Item)
	})

	var g errgroup.Group
	for qty := 2; qty <= 201; qty++ {
		g.Go(func() error {
			_, err := svc.UpdateItem(item.ID, qty)
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, seen, 200)
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i].UpdatedAt.After(seen[i-1].UpdatedAt), "event %d delivered out of commit order", i)
	}

	stored, err := svc.GetCartItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Quantity, seen[len(seen)-1].Quantity)
}

func TestCartService_PanickingObserver(t *testing.T) {
	svc := newTestService()

	delivered := 0
	svc.Subscribe(func(cart.ChangeEvent) { panic("observer bug") })
	svc.Subscribe(func(cart.ChangeEvent) { delivered++ })

	item, err := svc.AddItem(newProduct(1, "1.00", 10), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	got, _ := svc.GetCartItem(item.ID)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Quantity)
}

type failingRepository struct {
	*cart.MemoryRepository
	err error
}

func (r *failingRepository) FindByProductID(uint) (*cart.CartItem, error) { return nil, r.err }
func (r *failingRepository) List() ([]cart.CartItem, error)               { return nil, r.err }
func (r *failingRepository) DeleteAll() error                             { return r.err }
func (r *failingRepository) DeleteByIDs([]uint) ([]cart.CartItem, error)  { return nil, r.err }

func TestCartService_StorageFailure(t *testing.T) {
	cause := errors.New("database is locked")
	svc := cart.NewService(&failingRepository{MemoryRepository: cart.NewMemoryRepository(), err: cause}, quietLogger())

	notified := false
	svc.Subscribe(func(cart.ChangeEvent) { notified = true })

	_, err := svc.AddItem(newProduct(1, "1.00", 10), 1)
	assert.True(t, apperror.IsKind(err, apperror.KindStorageFailure))
	assert.ErrorIs(t, err, cause)

	_, err = svc.GetCart()
	assert.True(t, apperror.IsKind(err, apperror.KindStorageFailure))

	err = svc.ClearCart()
	assert.True(t, apperror.IsKind(err, apperror.KindStorageFailure))

	err = svc.ClearItems([]cart.CartItem{{ID: 1}})
	assert.True(t, apperror.IsKind(err, apperror.KindStorageFailure))

	_, err = svc.IsEmpty()
	assert.Error(t, err)

	assert.False(t, notified)
}

func TestCartService_ConcurrentAddsSameProduct(t *testing.T) {
	svc := newTestService()
	p := newProduct(1, "2.00", 1000)

	const N = 100
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(p, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	items, err := svc.GetCart()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, N, items[0].Quantity)
}

func TestCartService_ConcurrentAddsNeverExceedStock(t *testing.T) {
	svc := newTestService()
	p := newProduct(1, "2.00", 10)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddItem(p, 1); err != nil {
				mu.Lock()
				if apperror.IsKind(err, apperror.KindInsufficientStock) {
					rejected++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	qty, err := svc.GetTotalQuantity()
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
	assert.Equal(t, 15, rejected)
}
