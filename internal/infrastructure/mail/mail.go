// Package mail delivers transactional e-mail through SendGrid, Resend or the log.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/portfolio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message is a single outgoing e-mail
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

// Validate checks the recipient and that there is something to send
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("message body is required")
	}
	return nil
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Sender name constants matching mail.provider
const (
	ProviderSendGrid = "sendgrid"
	ProviderResend   = "resend"
	ProviderLog      = "log"
)

// NewSender builds the sender selected by cfg.Provider
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	from := Address{Email: cfg.FromEmail, Name: cfg.FromName}
	switch cfg.Provider {
	case ProviderSendGrid:
		return NewSendGridSender(cfg.APIKey, from, logger), nil
	case ProviderResend:
		return NewResendSender(cfg.APIKey, from, logger), nil
	case ProviderLog, "":
		return NewLogSender(logger), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}

// Address is a named e-mail address
type Address struct {
	Email string
	Name  string
}

// String formats the address as `Name <email>`
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// LogSender writes messages to the log instead of sending them. Development only.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Info("mail (log provider)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
