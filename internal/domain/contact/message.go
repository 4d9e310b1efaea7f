package contact

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
)

// Field limits for contact submissions
const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// Message is a contact-form submission
type Message struct {
	shared.BaseAggregateRoot
	Name      string
	Email     string
	Subject   string
	Body      string
	IP        string
	UserAgent string
	ReadAt    *time.Time
}

// NewMessage validates and creates a contact message
func NewMessage(name, email, subject, body string) (*Message, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	if name == "" || len(name) > MaxNameLength {
		return nil, shared.NewDomainError("INVALID_NAME", "Name is required and cannot exceed 100 characters")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(subject) > MaxSubjectLength {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	if body == "" || len(body) > MaxMessageLength {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message is required and cannot exceed 5000 characters")
	}

	msg := &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             strings.ToLower(addr.Address),
		Subject:           subject,
		Body:              body,
	}
	msg.AddDomainEvent(NewMessageSubmittedEvent(msg))
	return msg, nil
}

// MarkRead records that the owner has read the message
func (m *Message) MarkRead() {
	if m.ReadAt != nil {
		return
	}
	now := time.Now()
	m.ReadAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()
}

// IsRead reports whether the message has been read
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// Aggregate type constant for Message
const AggregateTypeMessage = "ContactMessage"

// EventTypeMessageSubmitted is published for every accepted submission
const EventTypeMessageSubmitted = "ContactMessageSubmitted"

// MessageSubmittedEvent carries the submission to notification handlers
type MessageSubmittedEvent struct {
	shared.BaseDomainEvent
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewMessageSubmittedEvent creates a new MessageSubmittedEvent
func NewMessageSubmittedEvent(m *Message) *MessageSubmittedEvent {
	return &MessageSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSubmitted, AggregateTypeMessage, m.ID),
		Name:            m.Name,
		Email:           m.Email,
		Subject:         m.Subject,
		Body:            m.Body,
	}
}

// MessageFilter narrows message listings
type MessageFilter struct {
	shared.Filter
	UnreadOnly bool
}

// MessageRepository defines the interface for contact message persistence
type MessageRepository interface {
	Save(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	FindAll(ctx context.Context, filter MessageFilter) ([]*Message, int64, error)
}
