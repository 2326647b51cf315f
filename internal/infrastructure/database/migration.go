// internal/infrastructure/database/migration.go
package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&product.Product{},
		&cart.CartItem{},
		&order.Order{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes the struct tags cannot express.
// Failures are logged and counted, not returned.
func (m *Migration) CreateIndexes() (created, failed int) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_id ON cart_items(created_at, id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failed++
		} else {
			created++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": created,
		"failed":  failed,
	}).Info("Database indexes ensured")
	return created, failed
}

// SeedInitialData inserts the sample catalog when the products table is empty
func (m *Migration) SeedInitialData() error {
	var productCount int64
	if err := m.db.Model(&product.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if productCount > 0 {
		m.logger.WithField("products", productCount).Debug("Catalog already seeded")
		return nil
	}

	samples := product.SampleProducts()
	if err := m.db.Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	m.logger.WithField("products", len(samples)).Info("Sample catalog seeded")
	return nil
}

// GetTableInfo logs the row count of every managed table
func (m *Migration) GetTableInfo() (map[string]int64, error) {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return nil, err
	}

	info := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		info[table] = count
		m.logger.WithFields(logrus.Fields{
			"table":   table,
			"records": count,
		}).Debug("Table info")
	}
	return info, nil
}
