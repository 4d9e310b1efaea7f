package marketplace

import (
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Order domain event types
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedEvent is published when a customer places an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Total         string          `json:"total"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ItemCount     int             `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Total:           order.Total.String(),
		Amount:          order.Total.Amount(),
		Currency:        string(order.Total.Currency()),
		ItemCount:       order.ItemCount(),
	}
}

// OrderStatusChangedEvent is published on every lifecycle transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	From OrderStatus `json:"from"`
	To   OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID),
		From:            from,
		To:              order.Status,
	}
}
