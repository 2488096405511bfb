package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
// Store не nil только при работе с Postgres.
type Dependencies struct {
	Customers    domain.CustomerDirectory
	Catalog      domain.ProductCatalog
	Orders       domain.OrderRepository
	Idempotency  domain.IdempotencyRepository
	ProductCache cache.Cache
	Store        *postgres.Store
	Logger       *log.Entry
}

// NewDependencies создаёт хранилища согласно конфигурации: Postgres при
// наличии DSN (с применением миграций), иначе in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.Store = store
		deps.Customers = postgres.NewCustomerDirectory(store)
		deps.Catalog = postgres.NewProductCatalog(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Idempotency = postgres.NewIdempotencyRepository(store)
		logger.Info("используется хранилище postgres")
	} else {
		deps.Customers = memory.NewCustomerDirectory()
		deps.Catalog = memory.NewProductCatalog()
		deps.Orders = memory.NewOrderRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		logger.Info("используется in-memory хранилище")
	}

	if cfg.RedisAddr != "" {
		deps.ProductCache = cache.NewRedisCache(cfg.RedisAddr, "storefront")
		logger.WithField("addr", cfg.RedisAddr).Info("redis cache initialized")
	}

	return deps, nil
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
