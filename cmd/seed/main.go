package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// demoCatalog возвращает товары для локальной разработки.
func demoCatalog() []domain.Product {
	return []domain.Product{
		{Name: "Книга «Практика Go»", PriceMinor: 50000, Quantity: 25},
		{Name: "Настольная лампа", PriceMinor: 120000, Quantity: 10},
		{Name: "Механическая клавиатура", PriceMinor: 450000, Quantity: 5},
		{Name: "Кружка с логотипом", PriceMinor: 30000, Quantity: 100},
	}
}

// demoCustomers возвращает клиентов для локальной разработки.
func demoCustomers() []domain.Customer {
	return []domain.Customer{
		{Name: "Анна Петрова", Email: "anna@example.com"},
		{Name: "Борис Иванов", Email: "boris@example.com"},
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var dsn string
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: SHOP_POSTGRES_DSN)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("SHOP_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("SHOP_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := store.MigrateUp(ctx, 0); err != nil {
		fail("apply migrations: %v", err)
	}

	products := postgres.NewProductRepository(store)
	created := 0
	for _, product := range demoCatalog() {
		saved, err := products.Create(product)
		if err != nil {
			fail("create product %q: %v", product.Name, err)
		}
		created++
		log.WithFields(log.Fields{"id": saved.ID, "name": saved.Name}).Info("товар добавлен")
	}

	customers := postgres.NewCustomerRepository(store)
	for _, customer := range demoCustomers() {
		saved, err := customers.Create(customer)
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			log.WithField("email", customer.Email).Info("клиент уже существует, пропускаем")
			continue
		}
		if err != nil {
			fail("create customer %q: %v", customer.Email, err)
		}
		log.WithFields(log.Fields{"id": saved.ID, "email": saved.Email}).Info("клиент добавлен")
	}

	fmt.Printf("seed ok: products=%d\n", created)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
