package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отклонения запросов для лейбла reason.
const (
	RejectReasonDuplicateEmail    = "duplicate_email"
	RejectReasonCustomerNotFound  = "customer_not_found"
	RejectReasonProductNotFound   = "product_not_found"
	RejectReasonInsufficientStock = "insufficient_stock"
	RejectReasonInvalidRequest    = "invalid_request"
)

// WorkflowMetrics содержит метрики бизнес-операций магазина.
type WorkflowMetrics struct {
	// Счётчики операций
	ordersPlaced        prometheus.Counter
	customersRegistered prometheus.Counter
	requestsRejected    *prometheus.CounterVec

	// Списанные единицы остатка
	stockUnitsDecremented prometheus.Counter

	// Гистограмма времени размещения заказа
	placeOrderDuration prometheus.Histogram

	// Счётчик событий outbox
	outboxEvents prometheus.Counter
}

// NewWorkflowMetrics создаёт новый экземпляр метрик, зарегистрированный в default registry.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Total number of successfully placed orders",
		}),
		customersRegistered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_customers_registered_total",
			Help: "Total number of registered customers",
		}),
		requestsRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_requests_rejected_total",
			Help: "Total number of rejected workflow requests grouped by reason",
		}, []string{"reason"}),
		stockUnitsDecremented: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_stock_units_decremented_total",
			Help: "Total number of stock units decremented by placed orders",
		}),
		placeOrderDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_place_order_duration_seconds",
			Help:    "Duration of the order placement workflow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_outbox_events_total",
			Help: "Total number of events enqueued to the transactional outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик размещённых заказов.
func (m *WorkflowMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordCustomerRegistered увеличивает счётчик зарегистрированных клиентов.
func (m *WorkflowMetrics) RecordCustomerRegistered() {
	m.customersRegistered.Inc()
}

// RecordRejected увеличивает счётчик отклонённых запросов по причине reason.
func (m *WorkflowMetrics) RecordRejected(reason string) {
	m.requestsRejected.WithLabelValues(reason).Inc()
}

// RecordStockDecremented фиксирует число списанных единиц остатка.
func (m *WorkflowMetrics) RecordStockDecremented(units int64) {
	if units <= 0 {
		return
	}
	m.stockUnitsDecremented.Add(float64(units))
}

// RecordPlaceOrderDuration записывает время выполнения размещения заказа.
func (m *WorkflowMetrics) RecordPlaceOrderDuration(duration time.Duration) {
	m.placeOrderDuration.Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *WorkflowMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
