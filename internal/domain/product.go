package domain

import "time"

// Product описывает позицию каталога товаров.
type Product struct {
	ID string
	// Name — человекочитаемое название товара.
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Quantity — доступный остаток на складе, не может быть отрицательным.
	Quantity int32
	// Version используется для optimistic locking при изменении остатка.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockChange описывает списание остатка по одному товару при размещении заказа.
type StockChange struct {
	ProductID string
	// Qty — сколько единиц списать. Всегда положительное число.
	Qty int32
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceInvalid)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrProductQuantityInvalid)
	}

	return errs
}
