package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonvlasov/shop/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// statusForError переводит доменные ошибки в HTTP-статусы:
// конфликты состояния — 409, отсутствующие сущности — 404,
// ошибки валидации входа — 400, всё остальное — 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyRegistered),
		errors.Is(err, domain.ErrInsufficientStock),
		domain.IsStockConflict(err):
		return http.StatusConflict
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCustomerNameRequired),
		errors.Is(err, domain.ErrCustomerEmailRequired),
		errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrProductIDRequired),
		errors.Is(err, domain.ErrDuplicateOrderItem),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
