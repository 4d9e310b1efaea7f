package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	client *sendgrid.Client
	from   Address
	logger *zap.Logger
}

// NewSendGridSender creates a SendGridSender
func NewSendGridSender(apiKey string, from Address, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send delivers msg. Any non-2xx status is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendWithContext(ctx, buildSendGridMessage(s.from, msg))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	s.logger.Debug("mail sent", zap.String("provider", ProviderSendGrid), zap.Int("status", resp.StatusCode))
	return nil
}

func buildSendGridMessage(from Address, msg Message) *sgmail.SGMailV3 {
	m := sgmail.NewSingleEmail(
		sgmail.NewEmail(from.Name, from.Email),
		msg.Subject,
		sgmail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	return m
}
