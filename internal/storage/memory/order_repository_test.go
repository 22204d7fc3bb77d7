package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/storage/memory"
)

func newOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		CustomerID: "customer-1",
		Items: []domain.OrderItem{
			{ProductID: "product-1", Qty: 3, PriceMinor: 1000, CreatedAt: now},
		},
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()

	created, err := repo.Create(newOrder())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated order id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
	if created.Items[0].ID == "" {
		t.Fatal("expected generated item id")
	}

	stored, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.CustomerID != "customer-1" {
		t.Fatalf("expected customer-1, got %s", stored.CustomerID)
	}
	if len(stored.Items) != 1 || stored.Items[0].PriceMinor != 1000 {
		t.Fatalf("unexpected items: %+v", stored.Items)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_CreateDuplicateID(t *testing.T) {
	repo := memory.NewOrderRepository()

	order := newOrder()
	order.ID = "order-1"
	if _, err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := repo.Create(order); !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists, got %v", err)
	}
}

func TestOrderRepository_GetReturnsCopy(t *testing.T) {
	repo := memory.NewOrderRepository()

	created, err := repo.Create(newOrder())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Items[0].Qty = 99

	second, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Items[0].Qty != 3 {
		t.Fatalf("stored order mutated through returned copy: %+v", second.Items)
	}
}
