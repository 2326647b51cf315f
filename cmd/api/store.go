package main

import (
	"github.com/sirupsen/logrus"
	"github.com/your-org/store-backend/internal/config"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/order"
	"github.com/your-org/store-backend/internal/domain/product"
	"github.com/your-org/store-backend/internal/infrastructure/database"
)

// store bundles the repositories selected by DB_DRIVER
type store struct {
	catalog   product.Catalog
	cartRepo  cart.Repository
	orderRepo order.Repository
	health    func() error
	close     func() error
}

func (s *store) Close() {
	if s.close != nil {
		_ = s.close()
	}
}

func openStore(cfg *config.Config, log logrus.FieldLogger) (*store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return &store{
			catalog:   product.NewMemoryCatalog(product.SampleProducts()...),
			cartRepo:  cart.NewMemoryRepository(),
			orderRepo: order.NewMemoryRepository(),
		}, nil
	}

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}

	migration := database.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, failed := migration.CreateIndexes(); failed > 0 {
		log.WithField("failed", failed).Warn("Some indexes could not be created")
	}

	if cfg.App.SeedCatalog {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
	}

	if info, err := migration.GetTableInfo(); err == nil {
		log.WithField("tables", info).Info("Database ready")
	}

	return &store{
		catalog:   product.NewService(db.GetDB()),
		cartRepo:  cart.NewGormRepository(db.GetDB()),
		orderRepo: order.NewGormRepository(db.GetDB()),
		health:    db.Health,
		close:     db.Close,
	}, nil
}
