package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/storage/memory"
)

func seedProduct(t *testing.T, repo domain.ProductRepository, name string, qty int32) domain.Product {
	t.Helper()

	product, err := repo.Create(domain.Product{Name: name, PriceMinor: 1000, Quantity: qty})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestProductRepository_FindAllByIDs(t *testing.T) {
	repo := memory.NewProductRepository()
	first := seedProduct(t, repo, "keyboard", 5)
	second := seedProduct(t, repo, "mouse", 3)

	products, err := repo.FindAllByIDs([]string{first.ID, second.ID, "missing", first.ID})
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	repo := memory.NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 5)

	err := repo.DecrementStock([]domain.StockChange{{ProductID: product.ID, Qty: 3}})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	updated, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", updated.Quantity)
	}
	if updated.Version != product.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
}

func TestProductRepository_DecrementStockConflict(t *testing.T) {
	repo := memory.NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 2)

	err := repo.DecrementStock([]domain.StockChange{{ProductID: product.ID, Qty: 3}})
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}

	unchanged, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if unchanged.Quantity != 2 {
		t.Fatalf("conflict must not change stock, got %d", unchanged.Quantity)
	}
}

func TestProductRepository_DecrementStockAllOrNothing(t *testing.T) {
	repo := memory.NewProductRepository()
	enough := seedProduct(t, repo, "keyboard", 5)
	scarce := seedProduct(t, repo, "mouse", 1)

	err := repo.DecrementStock([]domain.StockChange{
		{ProductID: enough.ID, Qty: 2},
		{ProductID: scarce.ID, Qty: 2},
	})
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}

	first, _ := repo.GetByID(enough.ID)
	if first.Quantity != 5 {
		t.Fatalf("partial decrement applied: %d", first.Quantity)
	}
}

func TestProductRepository_DecrementStockMissingProduct(t *testing.T) {
	repo := memory.NewProductRepository()

	err := repo.DecrementStock([]domain.StockChange{{ProductID: "missing", Qty: 1}})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_RestoreStock(t *testing.T) {
	repo := memory.NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 5)

	if err := repo.DecrementStock([]domain.StockChange{{ProductID: product.ID, Qty: 4}}); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if err := repo.RestoreStock([]domain.StockChange{{ProductID: product.ID, Qty: 4}}); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if restored.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", restored.Quantity)
	}
}

func TestProductRepository_ConcurrentDecrement(t *testing.T) {
	repo := memory.NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 10)

	const workers = 20

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- repo.DecrementStock([]domain.StockChange{{ProductID: product.ID, Qty: 1}})
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded := 0
	for err := range errCh {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrStockConflict) {
			t.Fatalf("unexpected decrement error: %v", err)
		}
	}
	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful decrements, got %d", succeeded)
	}

	final, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if final.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", final.Quantity)
	}
}

func TestProductRepository_ListSortedByName(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "monitor", 2)
	seedProduct(t, repo, "cable", 10)
	seedProduct(t, repo, "keyboard", 5)

	products, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	names := []string{products[0].Name, products[1].Name, products[2].Name}
	want := []string{"cable", "keyboard", "monitor"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}
