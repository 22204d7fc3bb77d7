package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antonvlasov/shop/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

// Create сохраняет клиента. Уникальность email гарантирует
// функциональный индекс по LOWER(email): гонку двух одновременных
// регистраций разрешает сама база.
func (r *customerRepository) Create(customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	stored := customer
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Email = strings.TrimSpace(stored.Email)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, stored.ID, stored.Name, stored.Email, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			// Конфликт PK при навязанном вызывающим ID — не дубль email.
			if constraint == "uq_customers_email" {
				return domain.Customer{}, domain.ErrEmailAlreadyRegistered
			}
			return domain.Customer{}, domain.ErrCustomerAlreadyExists
		}
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	return stored, nil
}

func (r *customerRepository) GetByID(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryOne(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)
}

func (r *customerRepository) GetByEmail(email string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryOne(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM customers
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email))
}

func (r *customerRepository) queryOne(ctx context.Context, query string, arg any) (domain.Customer, error) {
	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
