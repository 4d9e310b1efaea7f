package telemetry

import (
	"context"
	"errors"

	"github.com/portfolio/backend/internal/domain/contact"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// SiteMetrics turns domain events into business counters.
// It is registered on the event bus like any other handler.
type SiteMetrics struct {
	ordersPlaced   *Counter
	orderRevenue   metric.Float64Counter
	orderItems     *Counter
	statusChanges  *Counter
	contactForms   *Counter
	adminLogins    *Counter
	passwordChange *Counter
}

// NewSiteMetrics creates the counters on meter
func NewSiteMetrics(meter metric.Meter) (*SiteMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewSiteMetrics: meter cannot be nil")
	}
	m := &SiteMetrics{}
	var err error

	if m.ordersPlaced, err = NewCounter(meter, "portfolio.orders.placed", "Orders placed", "{order}"); err != nil {
		return nil, err
	}
	if m.orderRevenue, err = meter.Float64Counter("portfolio.orders.revenue",
		metric.WithDescription("Order totals at placement"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.orderItems, err = NewCounter(meter, "portfolio.orders.items", "Items ordered", "{item}"); err != nil {
		return nil, err
	}
	if m.statusChanges, err = NewCounter(meter, "portfolio.orders.status_changes", "Order status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.contactForms, err = NewCounter(meter, "portfolio.contact.messages", "Contact messages received", "{message}"); err != nil {
		return nil, err
	}
	if m.adminLogins, err = NewCounter(meter, "portfolio.admin.logins", "Completed admin logins", "{login}"); err != nil {
		return nil, err
	}
	if m.passwordChange, err = NewCounter(meter, "portfolio.admin.password_changes", "Admin password changes", "{change}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *SiteMetrics) EventTypes() []string {
	return []string{
		marketplace.EventTypeOrderPlaced,
		marketplace.EventTypeOrderStatusChanged,
		contact.EventTypeMessageSubmitted,
		identity.EventTypeAdminLoggedIn,
		identity.EventTypeAdminPasswordChanged,
	}
}

// Handle implements shared.EventHandler
func (m *SiteMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *marketplace.OrderPlacedEvent:
		m.ordersPlaced.Inc(ctx)
		m.orderItems.Add(ctx, int64(e.ItemCount))
		amount, _ := e.Amount.Float64()
		m.orderRevenue.Add(ctx, amount, metric.WithAttributes(AttrCurrency.String(e.Currency)))
	case *marketplace.OrderStatusChangedEvent:
		m.statusChanges.Inc(ctx, AttrOrderStatus.String(string(e.To)))
	case *contact.MessageSubmittedEvent:
		m.contactForms.Inc(ctx)
	case *identity.AdminLoggedInEvent:
		m.adminLogins.Inc(ctx)
	case *identity.AdminPasswordChangedEvent:
		m.passwordChange.Inc(ctx)
	}
	return nil
}
