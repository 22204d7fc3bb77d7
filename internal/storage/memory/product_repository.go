package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antonvlasov/shop/internal/domain"
)

// productRepositoryInMemory — in-memory реализация каталога товаров.
// Условное списание остатков выполняется атомарно под общим мьютексом.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, генерируя ID и таймстемпы.
func (r *productRepositoryInMemory) Create(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	} else if _, exists := r.items[product.ID]; exists {
		return domain.Product{}, domain.ErrProductAlreadyExists
	}

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	r.items[product.ID] = product
	return product, nil
}

// GetByID возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) GetByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// FindAllByIDs возвращает только существующие товары, дубликаты во входе игнорируются.
func (r *productRepositoryInMemory) FindAllByIDs(ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// List возвращает весь каталог, отсортированный по имени.
func (r *productRepositoryInMemory) List() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DecrementStock атомарно списывает остатки, либо не меняет ничего.
// Проверка и запись выполняются под одним мьютексом, поэтому параллельные
// заказы не могут списать один остаток дважды.
func (r *productRepositoryInMemory) DecrementStock(changes []domain.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, change := range changes {
		product, ok := r.items[change.ProductID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if change.Qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
		if product.Quantity < change.Qty {
			return domain.ErrStockConflict
		}
	}

	now := time.Now().UTC()
	for _, change := range changes {
		product := r.items[change.ProductID]
		product.Quantity -= change.Qty
		product.Version++
		product.UpdatedAt = now
		r.items[change.ProductID] = product
	}
	return nil
}

// RestoreStock возвращает ранее списанные остатки (компенсация неудачного заказа).
func (r *productRepositoryInMemory) RestoreStock(changes []domain.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, change := range changes {
		if _, ok := r.items[change.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		if change.Qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
	}

	now := time.Now().UTC()
	for _, change := range changes {
		product := r.items[change.ProductID]
		product.Quantity += change.Qty
		product.Version++
		product.UpdatedAt = now
		r.items[change.ProductID] = product
	}
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
