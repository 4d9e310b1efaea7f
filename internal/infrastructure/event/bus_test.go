package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
	block   chan struct{}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"OrderPlaced"}}
	bus.Subscribe(handler)

	first, second := newTestEvent("OrderPlaced"), newTestEvent("OrderPlaced")
	require.NoError(t, bus.Publish(context.Background(), first, newTestEvent("Other"), second))

	assert.Equal(t, []shared.DomainEvent{first, second}, handler.handled)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"OrderPlaced"}}
	bus.Subscribe(handler, "AdminLoggedIn")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("AdminLoggedIn")))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_FailuresDoNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("smtp down")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing, "ContactMessageSubmitted")
	bus.Subscribe(panicking, "ContactMessageSubmitted")
	bus.Subscribe(healthy, "ContactMessageSubmitted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ContactMessageSubmitted")))

	assert.Equal(t, 1, healthy.count())
	entries := logs.FilterMessage("handler failed to process event").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked: boom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler, "OrderPlaced")

	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_AsyncStopWaitsForHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(time.Second))
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())

	release := make(chan struct{})
	handler := &recordingHandler{block: release}
	bus.Subscribe(handler, "OrderPlaced")

	reqCtx, cancel := context.WithCancel(ctx)
	require.NoError(t, bus.Publish(reqCtx, newTestEvent("OrderPlaced")))
	cancel()
	assert.Zero(t, handler.count(), "publish does not wait for async handlers")

	close(release)
	stopCtx, stop := context.WithTimeout(ctx, time.Second)
	defer stop()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Equal(t, 1, handler.count())
	assert.False(t, bus.Running())
}

func TestInMemoryEventBus_StopHonoursDeadline(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(time.Second))
	release := make(chan struct{})
	bus.Subscribe(&recordingHandler{block: release}, "OrderPlaced")
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, bus.Stop(context.Background()))
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()

	inner := &recordingHandler{types: []string{"OrderPlaced"}}
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	event := newTestEvent("OrderPlaced")
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, newTestEvent("OrderPlaced")))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicates: 1}, h.Stats())
	assert.Equal(t, []string{"OrderPlaced"}, h.EventTypes())
	assert.Same(t, inner, h.Unwrap())
}

func TestIdempotentHandler_RetriesAfterFailure(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()

	inner := &recordingHandler{err: errors.New("webhook 502")}
	h := NewIdempotentHandler(inner, store, zap.NewNop(), WithIdempotencyTTL(time.Hour))
	event := newTestEvent("ContactMessageSubmitted")
	ctx := context.Background()

	assert.Error(t, h.Handle(ctx, event))
	inner.mu.Lock()
	inner.err = nil
	inner.mu.Unlock()
	require.NoError(t, h.Handle(ctx, event))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_KeysAreScopedPerHandler(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()

	webhook, mailer := &recordingHandler{}, &recordingHandler{}
	a := NewIdempotentHandler(webhook, store, zap.NewNop(), WithHandlerName("webhook"))
	b := NewIdempotentHandler(mailer, store, zap.NewNop(), WithHandlerName("mailer"))
	event := newTestEvent("ContactMessageSubmitted")

	require.NoError(t, a.Handle(context.Background(), event))
	require.NoError(t, b.Handle(context.Background(), event))

	assert.Equal(t, 1, webhook.count())
	assert.Equal(t, 1, mailer.count())
}
