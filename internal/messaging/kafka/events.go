package kafka

import "time"

// EventType определяет тип события.
type EventType string

const (
	// EventTypeOrderPlaced — заказ успешно оформлен, остатки списаны.
	EventTypeOrderPlaced EventType = "order.placed"
	// EventTypeOrderRejected — оформление отклонено одной из проверок.
	EventTypeOrderRejected EventType = "order.rejected"
)

// Topics для Kafka.
const (
	TopicOrderEvents = "storefront.order.events"
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id,omitempty"`
	CustomerID string                 `json:"customer_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
