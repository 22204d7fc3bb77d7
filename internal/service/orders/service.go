package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/messaging/kafka"
	"github.com/antonvlasov/shop/internal/metrics"
)

// PlaceOrderItem — запрошенная позиция заказа: товар и количество.
// Цена позиции всегда берётся из каталога на момент размещения.
type PlaceOrderItem struct {
	ProductID string
	Qty       int32
}

// PlaceOrderRequest — входные данные размещения заказа.
type PlaceOrderRequest struct {
	CustomerID string
	Items      []PlaceOrderItem
}

// Service реализует размещение и чтение заказов.
//
// Порядок шагов при размещении фиксированный: валидация запроса,
// проверка клиента, загрузка товаров, условное списание остатков и
// только затем запись заказа. Списание атомарное по всем позициям,
// поэтому частично исполненных заказов не бывает; если запись заказа
// после списания не удалась, остатки возвращаются компенсацией.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.WorkflowMetrics
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewWorkflowMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	svc := NewService(customers, products, orders, outbox, logger)
	svc.metrics = nil
	return svc
}

// PlaceOrder размещает заказ для существующего клиента.
//
// Возвращает первую нарушенную доменную ошибку: ErrCustomerNotFound,
// ErrProductNotFound, ErrInsufficientStock либо ошибку валидации входа.
// Заказ записывается только после успешного списания остатков.
func (s *Service) PlaceOrder(_ context.Context, req PlaceOrderRequest) (domain.Order, error) {
	started := time.Now()

	draft := domain.Order{CustomerID: req.CustomerID}
	for _, item := range req.Items {
		draft.Items = append(draft.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}
	if errs := draft.ValidateInvariants(); len(errs) > 0 {
		s.recordRejected(metrics.RejectReasonInvalidRequest)
		return domain.Order{}, errs[0]
	}

	if _, err := s.customers.GetByID(req.CustomerID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			s.recordRejected(metrics.RejectReasonCustomerNotFound)
			return domain.Order{}, err
		}
		s.logger.WithError(err).Error("failed to load customer")
		return domain.Order{}, fmt.Errorf("lookup customer: %w", err)
	}

	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	found, err := s.products.FindAllByIDs(ids)
	if err != nil {
		s.logger.WithError(err).Error("failed to load products")
		return domain.Order{}, fmt.Errorf("lookup products: %w", err)
	}
	catalog := make(map[string]domain.Product, len(found))
	for _, p := range found {
		catalog[p.ID] = p
	}
	for _, item := range req.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			s.recordRejected(metrics.RejectReasonProductNotFound)
			return domain.Order{}, domain.ErrProductNotFound
		}
		if product.Quantity < item.Qty {
			s.recordRejected(metrics.RejectReasonInsufficientStock)
			return domain.Order{}, domain.ErrInsufficientStock
		}
	}

	// Проверка остатков выше — только быстрый отказ; гонку с параллельными
	// заказами закрывает условное списание в репозитории.
	changes := make([]domain.StockChange, 0, len(req.Items))
	var units int64
	for _, item := range req.Items {
		changes = append(changes, domain.StockChange{ProductID: item.ProductID, Qty: item.Qty})
		units += int64(item.Qty)
	}
	if err := s.products.DecrementStock(changes); err != nil {
		switch {
		case errors.Is(err, domain.ErrStockConflict):
			s.recordRejected(metrics.RejectReasonInsufficientStock)
			return domain.Order{}, domain.ErrInsufficientStock
		case errors.Is(err, domain.ErrProductNotFound):
			s.recordRejected(metrics.RejectReasonProductNotFound)
			return domain.Order{}, err
		default:
			s.logger.WithError(err).Error("failed to decrement stock")
			return domain.Order{}, fmt.Errorf("decrement stock: %w", err)
		}
	}

	for i := range draft.Items {
		draft.Items[i].PriceMinor = catalog[draft.Items[i].ProductID].PriceMinor
	}

	created, err := s.orders.Create(draft)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist order, restoring stock")
		if restoreErr := s.products.RestoreStock(changes); restoreErr != nil {
			s.logger.WithError(restoreErr).Error("stock compensation failed")
		}
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordStockDecremented(units)
		s.metrics.RecordPlaceOrderDuration(time.Since(started))
	}
	s.emitPlacedEvent(created)
	s.emitDepletedEvents(created)

	s.logger.WithFields(log.Fields{
		"order_id":    created.ID,
		"customer_id": created.CustomerID,
		"items":       len(created.Items),
		"total_minor": created.TotalMinor(),
	}).Info("order placed")

	return created, nil
}

// FindOrder возвращает заказ по идентификатору.
// Отсутствие заказа — не ошибка: возвращается found == false.
func (s *Service) FindOrder(_ context.Context, id string) (domain.Order, bool, error) {
	order, err := s.orders.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, false, nil
		}
		s.logger.WithError(err).WithField("order_id", id).Error("failed to load order")
		return domain.Order{}, false, fmt.Errorf("lookup order: %w", err)
	}
	return order, true, nil
}

// emitDepletedEvents публикует событие по каждому товару, остаток которого
// заказ выбрал до нуля.
func (s *Service) emitDepletedEvents(order domain.Order) {
	if s.outbox == nil {
		return
	}

	for _, item := range order.Items {
		product, err := s.products.GetByID(item.ProductID)
		if err != nil || product.Quantity > 0 {
			continue
		}
		payload, err := json.Marshal(kafka.NewStockDepletedEvent(product.ID, product.Name, order.ID))
		if err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).Error("marshal depleted event failed")
			continue
		}
		msg := domain.OutboxMessage{
			AggregateType: "product",
			AggregateID:   product.ID,
			EventType:     string(kafka.EventTypeStockDepleted),
			Payload:       payload,
		}
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).Error("enqueue depleted event failed")
		} else if s.metrics != nil {
			s.metrics.RecordOutboxEvent()
		}
	}
}

func (s *Service) recordRejected(reason string) {
	if s.metrics != nil {
		s.metrics.RecordRejected(reason)
	}
}

func (s *Service) emitPlacedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	items := make([]kafka.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, kafka.OrderEventItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	event := kafka.NewOrderPlacedEvent(order.ID, order.CustomerID, order.TotalMinor(), items)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal placed event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderPlaced),
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue placed event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
