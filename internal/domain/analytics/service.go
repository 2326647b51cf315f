// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/domain/product"
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

const (
	scanPageSize = 100
	topProducts  = 5
)

// Service handles analytics business logic
type Service struct {
	orders        order.Repository
	catalog       product.Catalog
	lowStockLevel int
	now           func() time.Time
}

// NewService creates a new analytics service. Products with stock at or below
// lowStockLevel count as low stock.
func NewService(orders order.Repository, catalog product.Catalog, lowStockLevel int) *Service {
	return &Service{
		orders:        orders,
		catalog:       catalog,
		lowStockLevel: lowStockLevel,
		now:           time.Now,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Sales metrics
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenueToday     decimal.Decimal `json:"revenue_today"`
	RevenueThisWeek  decimal.Decimal `json:"revenue_this_week"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	RevenueGrowth    float64         `json:"revenue_growth"` // Percentage

	// Order metrics
	TotalOrders     int64           `json:"total_orders"`
	OrdersToday     int64           `json:"orders_today"`
	OrdersThisWeek  int64           `json:"orders_this_week"`
	OrdersThisMonth int64           `json:"orders_this_month"`
	OrderGrowth     float64         `json:"order_growth"` // Percentage
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`

	// Product metrics
	TotalProducts      int64 `json:"total_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`

	SalesByStatus []StatusData       `json:"sales_by_status"`
	TopProducts   []ProductSalesData `json:"top_products"`
}

type StatusData struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

type ProductSalesData struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type periods struct {
	today, thisWeek, thisMonth, lastMonth time.Time
}

func periodsAt(now time.Time) periods {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return periods{
		today:     today,
		thisWeek:  today.AddDate(0, 0, -int(today.Weekday())),
		thisMonth: thisMonth,
		lastMonth: thisMonth.AddDate(0, -1, 0),
	}
}

// GetDashboardStats retrieves overall dashboard statistics. Cancelled orders
// are counted but excluded from revenue.
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		TotalRevenue:     decimal.Zero,
		RevenueToday:     decimal.Zero,
		RevenueThisWeek:  decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		AvgOrderValue:    decimal.Zero,
	}
	p := periodsAt(s.now())

	byStatus := map[order.Status]*StatusData{}
	byProduct := map[uint]*ProductSalesData{}
	lastMonthRevenue := decimal.Zero
	var lastMonthOrders, revenueOrders int64

	err := s.eachOrder(ctx, func(o *order.Order) {
		stats.TotalOrders++
		inToday := !o.CreatedAt.Before(p.today)
		inWeek := !o.CreatedAt.Before(p.thisWeek)
		inMonth := !o.CreatedAt.Before(p.thisMonth)
		inLastMonth := !o.CreatedAt.Before(p.lastMonth) && o.CreatedAt.Before(p.thisMonth)

		if inToday {
			stats.OrdersToday++
		}
		if inWeek {
			stats.OrdersThisWeek++
		}
		if inMonth {
			stats.OrdersThisMonth++
		}
		if inLastMonth {
			lastMonthOrders++
		}

		sd, ok := byStatus[o.Status]
		if !ok {
			sd = &StatusData{Status: string(o.Status), Value: decimal.Zero}
			byStatus[o.Status] = sd
		}
		sd.Count++
		sd.Value = sd.Value.Add(o.Total)

		if o.Status == order.StatusCancelled {
			return
		}

		revenueOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		if inToday {
			stats.RevenueToday = stats.RevenueToday.Add(o.Total)
		}
		if inWeek {
			stats.RevenueThisWeek = stats.RevenueThisWeek.Add(o.Total)
		}
		if inMonth {
			stats.RevenueThisMonth = stats.RevenueThisMonth.Add(o.Total)
		}
		if inLastMonth {
			lastMonthRevenue = lastMonthRevenue.Add(o.Total)
		}

		for _, item := range o.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSalesData{ProductID: item.ProductID, ProductName: item.Name, Revenue: decimal.Zero}
				byProduct[item.ProductID] = ps
			}
			ps.QuantitySold += int64(item.Quantity)
			ps.Revenue = ps.Revenue.Add(item.Subtotal())
		}
	})
	if err != nil {
		return nil, err
	}

	if revenueOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(revenueOrders)).Round(2)
	}
	if lastMonthRevenue.IsPositive() {
		stats.RevenueGrowth = stats.RevenueThisMonth.Sub(lastMonthRevenue).
			Div(lastMonthRevenue).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	if lastMonthOrders > 0 {
		stats.OrderGrowth = float64(stats.OrdersThisMonth-lastMonthOrders) / float64(lastMonthOrders) * 100
	}

	stats.SalesByStatus = make([]StatusData, 0, len(byStatus))
	for _, sd := range byStatus {
		stats.SalesByStatus = append(stats.SalesByStatus, *sd)
	}
	sort.Slice(stats.SalesByStatus, func(i, j int) bool {
		return stats.SalesByStatus[i].Status < stats.SalesByStatus[j].Status
	})

	stats.TopProducts = make([]ProductSalesData, 0, len(byProduct))
	for _, ps := range byProduct {
		stats.TopProducts = append(stats.TopProducts, *ps)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		a, b := stats.TopProducts[i], stats.TopProducts[j]
		if a.QuantitySold != b.QuantitySold {
			return a.QuantitySold > b.QuantitySold
		}
		return a.ProductID < b.ProductID
	})
	if len(stats.TopProducts) > topProducts {
		stats.TopProducts = stats.TopProducts[:topProducts]
	}

	if err := s.countProducts(stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) countProducts(stats *DashboardStats) error {
	if s.catalog == nil {
		return nil
	}

	products, err := s.catalog.ListProducts()
	if err != nil {
		return err
	}

	stats.TotalProducts = int64(len(products))
	for _, p := range products {
		switch {
		case p.Stock <= 0:
			stats.OutOfStockProducts++
		case p.Stock <= s.lowStockLevel:
			stats.LowStockProducts++
		}
	}
	return nil
}

// eachOrder walks every stored order newest first
func (s *Service) eachOrder(ctx context.Context, fn func(*order.Order)) error {
	for offset := 0; ; offset += scanPageSize {
		page, total, err := s.orders.List(ctx, scanPageSize, offset)
		if err != nil {
			return apperror.Storage("analytics scan", err)
		}
		for i := range page {
			fn(&page[i])
		}
		if len(page) < scanPageSize || int64(offset+len(page)) >= total {
			return nil
		}
	}
}
