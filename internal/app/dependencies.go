package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/storage/memory"
	"github.com/antonvlasov/shop/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения.
// Store равен nil при работе на in-memory репозиториях.
type Dependencies struct {
	Customers   domain.CustomerRepository
	Products    domain.ProductRepository
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository
	Store       *postgres.Store
	Logger      *log.Entry
}

// NewDependencies выбирает реализацию хранилища по конфигурации:
// PostgreSQL при заданном DSN (с применением миграций), иначе in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN не задан, используем in-memory хранилище")
		return &Dependencies{
			Customers:   memory.NewCustomerRepository(),
			Products:    memory.NewProductRepository(),
			Orders:      memory.NewOrderRepository(),
			Outbox:      memory.NewOutboxRepository(),
			Idempotency: memory.NewIdempotencyRepository(),
			Logger:      logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("подключились к postgres, миграции применены")

	return &Dependencies{
		Customers:   postgres.NewCustomerRepository(store),
		Products:    postgres.NewProductRepository(store),
		Orders:      postgres.NewOrderRepository(store),
		Outbox:      postgres.NewOutboxRepository(store),
		Idempotency: postgres.NewIdempotencyRepository(store),
		Store:       store,
		Logger:      logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
