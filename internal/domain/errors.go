package domain

import "errors"

var (
	// Ошибка отсутствующего имени клиента при регистрации.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email при регистрации.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// ErrEmailAlreadyRegistered возвращается, если email уже занят другим клиентом.
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCustomerAlreadyExists возвращается при попытке создать клиента с занятым ID.
	ErrCustomerAlreadyExists = errors.New("customer already exists")

	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceInvalid = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrProductQuantityInvalid = errors.New("product quantity must be non-negative")
	// ErrProductNotFound возвращается, если хотя бы один запрошенный товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductAlreadyExists возвращается при попытке создать товар с занятым ID.
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrInsufficientStock возвращается, если запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("insufficient product stock")
	// ErrStockConflict сигнализирует, что условное списание остатка не прошло
	// (параллельный заказ успел списать остаток первым).
	ErrStockConflict = errors.New("stock decrement conflict")

	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отсутствующего идентификатора товара в позиции заказа.
	ErrProductIDRequired = errors.New("item product_id is required")
	// Ошибка повторяющегося товара в позициях одного заказа.
	ErrDuplicateOrderItem = errors.New("order contains duplicate product")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists возвращается при попытке сохранить заказ с занятым ID.
	ErrOrderAlreadyExists = errors.New("order already exists")

	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хэш запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyNotFound — запись по ключу отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован для другого запроса в обработке.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key is used with a different request")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствию клиента, товара или заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsStockConflict проверяет, является ли ошибка конфликтом условного списания.
func IsStockConflict(err error) bool {
	return errors.Is(err, ErrStockConflict)
}
