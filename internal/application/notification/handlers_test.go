package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/contact"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

var site = Site{Name: "Example", BaseURL: "https://example.dev/", OwnerEmail: "owner@example.dev"}

func contactEvent(t *testing.T) *contact.MessageSubmittedEvent {
	t.Helper()
	msg, err := contact.NewMessage("Ada Lovelace", "ada@example.com", "Collaboration", "Shall we build an engine together?")
	require.NoError(t, err)
	return msg.GetDomainEvents()[0].(*contact.MessageSubmittedEvent)
}

func testOrder(t *testing.T) *marketplace.Order {
	t.Helper()
	price, err := valueobject.NewMoneyFromString("12.50", valueobject.USD)
	require.NoError(t, err)
	order, err := marketplace.NewOrder("Grace", "grace@example.com", []marketplace.OrderItem{
		{ProductID: uuid.New(), ProductName: "Poster", UnitPrice: price, Quantity: 2},
	})
	require.NoError(t, err)
	return order
}

func TestWebhookHandler_Contact(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Enabled").Return(true)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, "Ada Lovelace <ada@example.com>") &&
			assert.Contains(t, text, "Collaboration") &&
			assert.Contains(t, text, "engine together")
	})).Return(nil)

	h := NewWebhookHandler(notifier, zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), contactEvent(t)))
	notifier.AssertExpectations(t)
}

func TestWebhookHandler_Order(t *testing.T) {
	order := testOrder(t)
	notifier := new(MockNotifier)
	notifier.On("Enabled").Return(true)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, order.ID.String()) && assert.Contains(t, text, "2 item(s)")
	})).Return(nil)

	h := NewWebhookHandler(notifier, zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), order.GetDomainEvents()[0]))
	notifier.AssertExpectations(t)
}

func TestWebhookHandler_DisabledAndFailures(t *testing.T) {
	disabled := new(MockNotifier)
	disabled.On("Enabled").Return(false)
	require.NoError(t, NewWebhookHandler(disabled, zap.NewNop()).Handle(context.Background(), contactEvent(t)))
	disabled.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)

	failing := new(MockNotifier)
	failing.On("Enabled").Return(true)
	failing.On("Notify", mock.Anything, mock.Anything).Return(shared.ErrUpstream)
	err := NewWebhookHandler(failing, zap.NewNop()).Handle(context.Background(), contactEvent(t))
	assert.ErrorIs(t, err, shared.ErrUpstream)
}

func TestOwnerMailHandler(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		return msg.To == "owner@example.dev" && msg.ReplyTo == "ada@example.com"
	})).Return(nil)

	h := NewOwnerMailHandler(sender, site, zap.NewNop())
	assert.Equal(t, []string{contact.EventTypeMessageSubmitted}, h.EventTypes())
	require.NoError(t, h.Handle(context.Background(), contactEvent(t)))
	sender.AssertExpectations(t)
}

func TestOwnerMailHandler_NoOwnerConfigured(t *testing.T) {
	sender := new(MockSender)
	h := NewOwnerMailHandler(sender, Site{Name: "Example"}, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), contactEvent(t)))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestOrderConfirmationHandler(t *testing.T) {
	order := testOrder(t)
	orders := new(MockOrderReader)
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		return msg.To == "grace@example.com" &&
			assert.Contains(t, msg.Text, "https://example.dev/orders/"+order.ID.String()) &&
			assert.Contains(t, msg.Text, "2 x Poster")
	})).Return(nil)

	h := NewOrderConfirmationHandler(orders, sender, site, zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), order.GetDomainEvents()[0]))
	sender.AssertExpectations(t)
}

func TestOrderConfirmationHandler_OrderMissing(t *testing.T) {
	order := testOrder(t)
	orders := new(MockOrderReader)
	orders.On("FindByID", mock.Anything, order.ID).Return(nil, shared.ErrNotFound)

	h := NewOrderConfirmationHandler(orders, new(MockSender), site, zap.NewNop())
	err := h.Handle(context.Background(), order.GetDomainEvents()[0])
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuditHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditHandler(zap.New(core))

	admin, err := identity.NewAdmin("root", "root@example.dev", "correct-horse-42")
	require.NoError(t, err)
	admin.RecordLoginSuccess("203.0.113.9")

	var loggedIn shared.DomainEvent
	for _, e := range admin.GetDomainEvents() {
		if e.EventType() == identity.EventTypeAdminLoggedIn {
			loggedIn = e
		}
	}
	require.NotNil(t, loggedIn)
	require.NoError(t, h.Handle(context.Background(), loggedIn))

	entries := logs.FilterMessage("admin logged in").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, "203.0.113.9", entries[0].ContextMap()["ip"])
	assert.Equal(t, "root", entries[0].ContextMap()["username"])
}

func TestHandlers_RejectForeignEvents(t *testing.T) {
	foreign := &struct{ shared.BaseDomainEvent }{shared.NewBaseDomainEvent("Other", "Other", uuid.New())}

	assert.Error(t, NewAuditHandler(zap.NewNop()).Handle(context.Background(), foreign))
	assert.Error(t, NewOwnerMailHandler(new(MockSender), site, zap.NewNop()).Handle(context.Background(), foreign))

	notifier := new(MockNotifier)
	notifier.On("Enabled").Return(true)
	assert.Error(t, NewWebhookHandler(notifier, zap.NewNop()).Handle(context.Background(), foreign))
	assert.Error(t, NewOrderConfirmationHandler(new(MockOrderReader), new(MockSender), site, zap.NewNop()).Handle(context.Background(), foreign))
}
