package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers mail through the Resend API
type ResendSender struct {
	client *resend.Client
	from   Address
	logger *zap.Logger
}

// NewResendSender creates a ResendSender
func NewResendSender(apiKey string, from Address, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send delivers msg
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	sent, err := s.client.Emails.SendWithContext(ctx, buildResendRequest(s.from, msg))
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	s.logger.Debug("mail sent", zap.String("provider", ProviderResend), zap.String("id", sent.Id))
	return nil
}

func buildResendRequest(from Address, msg Message) *resend.SendEmailRequest {
	to := msg.To
	if msg.ToName != "" {
		to = Address{Email: msg.To, Name: msg.ToName}.String()
	}
	req := &resend.SendEmailRequest{
		From:    from.String(),
		To:      []string{to},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = msg.ReplyTo
	}
	return req
}
