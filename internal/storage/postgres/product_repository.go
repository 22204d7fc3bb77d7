package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/antonvlasov/shop/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	stored := product
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Version == 0 {
		stored.Version = 1
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price_minor, quantity, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, stored.ID, stored.Name, stored.PriceMinor, stored.Quantity, stored.Version, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, domain.ErrProductAlreadyExists
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return stored, nil
}

func (r *productRepository) GetByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price_minor, quantity, version, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID,
		&product.Name,
		&product.PriceMinor,
		&product.Quantity,
		&product.Version,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindAllByIDs(ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price_minor, quantity, version, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.PriceMinor,
			&product.Quantity,
			&product.Version,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// List возвращает весь каталог, отсортированный по имени.
func (r *productRepository) List() ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price_minor, quantity, version, created_at, updated_at
		FROM products
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.PriceMinor,
			&product.Quantity,
			&product.Version,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// DecrementStock выполняет условные UPDATE по всем позициям в одной
// транзакции: UPDATE проходит только при quantity >= qty, иначе вся
// транзакция откатывается. Позиции обрабатываются в порядке product ID,
// чтобы встречные заказы не попадали в deadlock.
func (r *productRepository) DecrementStock(changes []domain.StockChange) error {
	return r.applyStock(changes, false)
}

// RestoreStock возвращает списанные остатки (компенсация неудавшегося заказа).
func (r *productRepository) RestoreStock(changes []domain.StockChange) error {
	return r.applyStock(changes, true)
}

func (r *productRepository) applyStock(changes []domain.StockChange, restore bool) error {
	if len(changes) == 0 {
		return nil
	}

	ordered := append([]domain.StockChange(nil), changes...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, change := range ordered {
		if change.Qty <= 0 {
			err = domain.ErrItemQtyInvalid
			return err
		}

		var res sql.Result
		if restore {
			res, err = tx.ExecContext(ctx, `
				UPDATE products
				SET quantity = quantity + $2,
				    version = version + 1,
				    updated_at = $3
				WHERE id = $1
			`, change.ProductID, change.Qty, now)
		} else {
			res, err = tx.ExecContext(ctx, `
				UPDATE products
				SET quantity = quantity - $2,
				    version = version + 1,
				    updated_at = $3
				WHERE id = $1
				  AND quantity >= $2
			`, change.ProductID, change.Qty, now)
		}
		if err != nil {
			return fmt.Errorf("update stock for %s: %w", change.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			var exists bool
			exists, err = r.productExistsTx(ctx, tx, change.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				err = domain.ErrProductNotFound
				return err
			}
			err = domain.ErrStockConflict
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock update: %w", err)
	}

	return nil
}

func (r *productRepository) productExistsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var found string
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

var _ domain.ProductRepository = (*productRepository)(nil)
