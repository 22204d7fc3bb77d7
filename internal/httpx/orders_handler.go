package httpx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/service/orders"
)

type placeOrderRequest struct {
	CustomerID string                  `json:"customer_id"`
	Items      []placeOrderItemRequest `json:"items"`
}

type placeOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type orderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	TotalMinor int64               `json:"total_minor"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		TotalMinor: order.TotalMinor(),
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if key == "" || s.idempotency == nil {
		status, payload := s.executePlaceOrder(r.Context(), body)
		writeRaw(w, status, payload)
		return
	}

	hash := requestHash(body)
	record, err := s.idempotency.CreateProcessing(key, hash, time.Now().UTC().Add(idempotencyTTL))
	switch {
	case err == nil:
		status, payload := s.executePlaceOrder(r.Context(), body)
		s.storeIdempotentResult(key, status, payload)
		writeRaw(w, status, payload)
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "idempotency key is already used for a different request"})
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		s.replayIdempotentResult(w, record)
	default:
		s.logger.WithError(err).WithField("idempotency_key", key).Error("idempotency bookkeeping failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) executePlaceOrder(ctx context.Context, body []byte) (int, []byte) {
	var req placeOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, mustMarshal(errorResponse{Error: "invalid json body"})
	}

	items := make([]orders.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.PlaceOrderItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	placed, err := s.orders.PlaceOrder(ctx, orders.PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		return statusForError(err), mustMarshal(errorResponse{Error: err.Error()})
	}

	return http.StatusCreated, mustMarshal(toOrderResponse(placed))
}

func (s *Server) storeIdempotentResult(key string, status int, payload []byte) {
	var err error
	if status >= http.StatusInternalServerError {
		err = s.idempotency.MarkFailed(key, payload, status)
	} else {
		err = s.idempotency.MarkDone(key, payload, status)
	}
	if err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
	}
}

func (s *Server) replayIdempotentResult(w http.ResponseWriter, record domain.IdempotencyRecord) {
	if record.Status == domain.IdempotencyStatusProcessing {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "request with this idempotency key is still being processed"})
		return
	}
	writeRaw(w, record.HTTPStatus, record.ResponseBody)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing order id"})
		return
	}

	order, found, err := s.orders.FindOrder(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func mustMarshal(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		// Все сериализуемые типы здесь строятся из простых полей.
		panic(err)
	}
	return payload
}
