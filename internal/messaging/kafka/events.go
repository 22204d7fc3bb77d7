package kafka

import "time"

// EventType определяет тип публикуемого события.
type EventType string

const (
	// События заказов
	EventTypeOrderPlaced EventType = "order.placed"

	// События клиентов
	EventTypeCustomerRegistered EventType = "customer.registered"

	// EventTypeStockDepleted публикуется, когда остаток товара опускается до нуля.
	EventTypeStockDepleted EventType = "product.stock_depleted"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "shop.order.events"
	TopicCustomerEvents  = "shop.customer.events"
	TopicProductEvents   = "shop.product.events"
	TopicDeadLetterQueue = "shop.dlq" // Dead Letter Queue для failed messages
)

// OrderPlacedEvent описывает успешно размещённый заказ.
type OrderPlacedEvent struct {
	EventType  EventType        `json:"event_type"`
	OrderID    string           `json:"order_id"`
	CustomerID string           `json:"customer_id"`
	TotalMinor int64            `json:"total_minor"`
	Items      []OrderEventItem `json:"items"`
	Timestamp  time.Time        `json:"timestamp"`
}

// OrderEventItem — позиция заказа в событии.
type OrderEventItem struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

// CustomerRegisteredEvent описывает нового клиента.
type CustomerRegisteredEvent struct {
	EventType  EventType `json:"event_type"`
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewOrderPlacedEvent создаёт событие размещения заказа.
func NewOrderPlacedEvent(orderID, customerID string, totalMinor int64, items []OrderEventItem) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		EventType:  EventTypeOrderPlaced,
		OrderID:    orderID,
		CustomerID: customerID,
		TotalMinor: totalMinor,
		Items:      items,
		Timestamp:  time.Now().UTC(),
	}
}

// StockDepletedEvent сообщает, что заказ выбрал последний остаток товара.
type StockDepletedEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCustomerRegisteredEvent создаёт событие регистрации клиента.
func NewCustomerRegisteredEvent(customerID, email string) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		EventType:  EventTypeCustomerRegistered,
		CustomerID: customerID,
		Email:      email,
		Timestamp:  time.Now().UTC(),
	}
}

// NewStockDepletedEvent создаёт событие исчерпания остатка.
func NewStockDepletedEvent(productID, name, orderID string) *StockDepletedEvent {
	return &StockDepletedEvent{
		EventType: EventTypeStockDepleted,
		ProductID: productID,
		Name:      name,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	}
}
