package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/service/customers"
	"github.com/antonvlasov/shop/internal/service/orders"
)

const (
	requestTimeout    = 15 * time.Second
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// Server собирает HTTP API магазина поверх chi-роутера.
type Server struct {
	customers   *customers.Service
	orders      *orders.Service
	products    domain.ProductRepository
	idempotency domain.IdempotencyRepository
	logger      *log.Entry
}

// NewServer создаёт HTTP-слой. idempotency может быть nil: тогда
// заголовок Idempotency-Key игнорируется.
func NewServer(
	customersService *customers.Service,
	ordersService *orders.Service,
	products domain.ProductRepository,
	idempotency domain.IdempotencyRepository,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "httpx")
	}
	return &Server{
		customers:   customersService,
		orders:      ordersService,
		products:    products,
		idempotency: idempotency,
		logger:      logger,
	}
}

// Router возвращает настроенный chi-роутер со всеми маршрутами API.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(s.logRequests)

	r.Post("/customers", s.registerCustomer)
	r.Post("/orders", s.placeOrder)
	r.Get("/orders/{id}", s.getOrder)
	r.Get("/products", s.listProducts)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(started).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("http request")
	})
}
