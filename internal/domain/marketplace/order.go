package marketplace

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// ParseOrderStatus validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return status, nil
	}
	return "", shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+s)
}

// CanTransitionTo reports whether moving to next is allowed
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// maxItemQuantity bounds a single order line
const maxItemQuantity = 100

// OrderItem is a product snapshot captured when the order is placed
type OrderItem struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   valueobject.Money
	Quantity    int
}

// LineTotal returns unit price times quantity
func (i OrderItem) LineTotal() valueobject.Money {
	return i.UnitPrice.MultiplyByInt(int64(i.Quantity))
}

// Order is a storefront purchase
type Order struct {
	shared.BaseAggregateRoot
	CustomerName  string
	CustomerEmail string
	Items         []OrderItem
	Total         valueobject.Money
	Status        OrderStatus
	Note          string
}

// NewOrder creates a pending order from products already reserved by the caller
func NewOrder(customerName, customerEmail string, items []OrderItem) (*Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(customerEmail))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Invalid customer email")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	currency := items[0].UnitPrice.Currency()
	total := valueobject.Zero(currency)
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be between 1 and 100")
		}
		if item.UnitPrice.Currency() != currency {
			return nil, shared.NewDomainError("CURRENCY_MISMATCH", "All items in an order must share one currency")
		}
		total, err = total.Add(item.LineTotal())
		if err != nil {
			return nil, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
		}
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerName:      customerName,
		CustomerEmail:     strings.ToLower(addr.Address),
		Items:             items,
		Total:             total.Round(),
		Status:            OrderStatusPending,
	}
	order.AddDomainEvent(NewOrderPlacedEvent(order))
	return order, nil
}

// TransitionTo moves the order along its lifecycle
func (o *Order) TransitionTo(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change order status from "+string(o.Status)+" to "+string(next))
	}
	prev := o.Status
	o.Status = next
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev))
	return nil
}

// BelongsTo reports whether the order was placed with the given e-mail
func (o *Order) BelongsTo(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), o.CustomerEmail)
}

// ItemCount returns the total number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
