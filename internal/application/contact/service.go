package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/contact"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrMessageNotFound is returned for unknown message IDs
var ErrMessageNotFound = shared.NewDomainError("NOT_FOUND", "Message not found")

// Limiter throttles submissions per client key
type Limiter interface {
	Reserve(key string) (bool, time.Duration)
}

// Service accepts contact-form submissions and serves them to the admin
type Service struct {
	messages contact.MessageRepository
	limiter  Limiter
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewService creates a new contact service. limiter and events may be nil.
func NewService(messages contact.MessageRepository, limiter Limiter, events shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		messages: messages,
		limiter:  limiter,
		events:   events,
		logger:   logger,
	}
}

// Submit validates and stores a message, then announces it to subscribers.
// Only valid submissions count against the per-IP limit.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, client ClientInfo) (*SubmitResponse, error) {
	msg, err := contact.NewMessage(req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		return nil, err
	}
	msg.IP = client.IP
	msg.UserAgent = truncate(client.UserAgent, 255)

	if s.limiter != nil {
		if ok, wait := s.limiter.Reserve(client.IP); !ok {
			s.logger.Warn("Contact submission throttled", zap.String("ip", client.IP), zap.Duration("retry_after", wait))
			return nil, shared.NewRateLimitError(wait)
		}
	}

	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}

	events := msg.PullDomainEvents()
	if s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish contact events", zap.String("message_id", msg.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Contact message received",
		zap.String("message_id", msg.ID.String()),
		zap.String("from", logger.MaskEmail(msg.Email)))
	return &SubmitResponse{ID: msg.ID, ReceivedAt: msg.CreatedAt}, nil
}

// List returns a page of messages, newest first
func (s *Service) List(ctx context.Context, q MessageListQuery) ([]MessageResponse, int64, shared.Filter, error) {
	filter := contact.MessageFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		UnreadOnly: q.UnreadOnly,
	}
	filter.Filter = filter.Filter.Normalize(100)

	messages, total, err := s.messages.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	items := make([]MessageResponse, len(messages))
	for i, m := range messages {
		items[i] = ToMessageResponse(m)
	}
	return items, total, filter.Filter, nil
}

// MarkRead flags a message as read. Marking twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if !msg.IsRead() {
		msg.MarkRead()
		if err := s.messages.Save(ctx, msg); err != nil {
			return nil, err
		}
	}
	resp := ToMessageResponse(msg)
	return &resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
