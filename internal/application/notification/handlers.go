// Package notification holds event handlers that fan domain events out to
// the site owner, customers and the audit log.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/contact"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// Notifier posts a short text message to a chat webhook
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, text string) error
}

// OrderReader loads an order with its line items
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error)
}

// Site carries the values rendered into outgoing mail
type Site struct {
	Name       string
	BaseURL    string
	OwnerEmail string
}

// WebhookHandler forwards contact submissions and new orders to the webhook
type WebhookHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(notifier Notifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *WebhookHandler) EventTypes() []string {
	return []string{contact.EventTypeMessageSubmitted, marketplace.EventTypeOrderPlaced}
}

// Handle formats the event and posts it
func (h *WebhookHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.notifier.Enabled() {
		return nil
	}

	var text string
	switch e := event.(type) {
	case *contact.MessageSubmittedEvent:
		text = fmt.Sprintf("**New contact message** from %s <%s>\n**Subject:** %s\n\n%s",
			e.Name, e.Email, e.Subject, e.Body)
	case *marketplace.OrderPlacedEvent:
		text = fmt.Sprintf("**New order** %s\n%s <%s>\n%d item(s), total %s",
			e.AggregateID(), e.CustomerName, e.CustomerEmail, e.ItemCount, e.Total)
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}

	if err := h.notifier.Notify(ctx, text); err != nil {
		return fmt.Errorf("webhook notification for %s: %w", event.EventType(), err)
	}
	h.logger.Debug("webhook notified", zap.String("event_type", event.EventType()))
	return nil
}

// OwnerMailHandler e-mails the site owner about contact submissions
type OwnerMailHandler struct {
	sender mail.Sender
	site   Site
	logger *zap.Logger
}

// NewOwnerMailHandler creates an OwnerMailHandler
func NewOwnerMailHandler(sender mail.Sender, site Site, logger *zap.Logger) *OwnerMailHandler {
	return &OwnerMailHandler{sender: sender, site: site, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OwnerMailHandler) EventTypes() []string {
	return []string{contact.EventTypeMessageSubmitted}
}

// Handle sends the submission to the owner with Reply-To set to the sender
func (h *OwnerMailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*contact.MessageSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if h.site.OwnerEmail == "" {
		h.logger.Debug("owner e-mail not configured, skipping contact mail")
		return nil
	}

	msg := mail.ContactMessage(h.site.OwnerEmail, h.site.Name, e.Name, e.Email, e.Subject, e.Body)
	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

// OrderConfirmationHandler sends the customer a confirmation for new orders
type OrderConfirmationHandler struct {
	orders OrderReader
	sender mail.Sender
	site   Site
	logger *zap.Logger
}

// NewOrderConfirmationHandler creates an OrderConfirmationHandler
func NewOrderConfirmationHandler(orders OrderReader, sender mail.Sender, site Site, logger *zap.Logger) *OrderConfirmationHandler {
	return &OrderConfirmationHandler{orders: orders, sender: sender, site: site, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderConfirmationHandler) EventTypes() []string {
	return []string{marketplace.EventTypeOrderPlaced}
}

// Handle loads the order and mails the confirmation
func (h *OrderConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.EventType() != marketplace.EventTypeOrderPlaced {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	order, err := h.orders.FindByID(ctx, event.AggregateID())
	if err != nil {
		return fmt.Errorf("load order %s: %w", event.AggregateID(), err)
	}

	lines := make([]mail.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, mail.OrderLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Total:    item.LineTotal().String(),
		})
	}

	id := order.ID.String()
	track := strings.TrimSuffix(h.site.BaseURL, "/") + "/orders/" + id
	msg := mail.OrderConfirmation(order.CustomerEmail, order.CustomerName, h.site.Name, id, order.Total.String(), track, lines)
	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	h.logger.Info("order confirmation sent",
		zap.String("order_id", id),
		zap.String("to", logger.MaskEmail(order.CustomerEmail)),
	)
	return nil
}

// AuditHandler writes security-relevant admin events to the log
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return []string{identity.EventTypeAdminLoggedIn, identity.EventTypeAdminPasswordChanged}
}

// Handle logs one line per event
func (h *AuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *identity.AdminLoggedInEvent:
		h.logger.Info("admin logged in",
			zap.String("admin_id", e.AggregateID().String()),
			zap.String("username", e.Username),
			zap.String("ip", e.IP),
			zap.Time("at", e.At),
		)
	case *identity.AdminPasswordChangedEvent:
		h.logger.Info("admin password changed",
			zap.String("admin_id", e.AggregateID().String()),
			zap.String("username", e.Username),
			zap.Time("at", e.ChangedAt),
		)
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
	return nil
}

// Register subscribes every handler to bus
func Register(bus shared.EventSubscriber, handlers ...shared.EventHandler) {
	for _, h := range handlers {
		bus.Subscribe(h)
	}
}
