package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antonvlasov/shop/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]domain.Customer
	byEmail map[string]string
}

// NewCustomerRepository возвращает in-memory справочник клиентов для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:   make(map[string]domain.Customer),
		byEmail: make(map[string]string),
	}
}

// Create сохраняет нового клиента, генерируя ID и таймстемпы.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(customer.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.Customer{}, domain.ErrEmailAlreadyRegistered
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	} else if _, exists := r.items[customer.ID]; exists {
		return domain.Customer{}, domain.ErrCustomerAlreadyExists
	}

	now := time.Now().UTC()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now

	r.items[customer.ID] = customer
	r.byEmail[email] = customer.ID
	return customer, nil
}

// GetByID возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) GetByID(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// GetByEmail возвращает клиента по email или ErrCustomerNotFound.
func (r *customerRepositoryInMemory) GetByEmail(email string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return r.items[id], nil
}

// Сравнение email регистронезависимое, как и unique-индекс в PostgreSQL-реализации.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
