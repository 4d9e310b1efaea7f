package mail

import (
	"context"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMessage_Validate(t *testing.T) {
	ok := Message{To: "a@example.com", Subject: "Hi", Text: "body"}
	assert.NoError(t, ok.Validate())

	noRecipient := ok
	noRecipient.To = "not-an-address"
	assert.Error(t, noRecipient.Validate())

	noSubject := ok
	noSubject.Subject = " "
	assert.Error(t, noSubject.Validate())

	noBody := ok
	noBody.Text = ""
	assert.Error(t, noBody.Validate())
}

func TestNewSender(t *testing.T) {
	log := zap.NewNop()

	s, err := NewSender(config.MailConfig{Provider: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.MailConfig{Provider: "sendgrid", APIKey: "SG.x", FromEmail: "me@example.com"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	s, err = NewSender(config.MailConfig{Provider: "resend", APIKey: "re_x", FromEmail: "me@example.com"}, log)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = NewSender(config.MailConfig{Provider: "smtp"}, log)
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewLogSender(zap.New(core))

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "Code", Text: "123456"})
	require.NoError(t, err)

	entries := logs.FilterMessage("mail (log provider)").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@example.com", entries[0].ContextMap()["to"])

	err = s.Send(context.Background(), Message{To: "bad", Subject: "x", Text: "y"})
	assert.Error(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestOTPMessage(t *testing.T) {
	msg := OTPMessage("admin@example.com", "Portfolio", "042917", 5*time.Minute)

	assert.Equal(t, "Your Portfolio sign-in code", msg.Subject)
	assert.Contains(t, msg.Text, "042917")
	assert.Contains(t, msg.Text, "5 minutes")
	assert.Contains(t, msg.HTML, "<strong>042917</strong>")
	assert.NoError(t, msg.Validate())
}

func TestContactMessage_EscapesHTML(t *testing.T) {
	msg := ContactMessage("owner@example.com", "Portfolio", "Eve", "eve@example.com", "", "<script>alert(1)</script>")

	assert.Equal(t, "[Portfolio] (no subject)", msg.Subject)
	assert.Equal(t, "eve@example.com", msg.ReplyTo)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestOrderConfirmation(t *testing.T) {
	msg := OrderConfirmation("c@example.com", "Cam", "Shop", "0b4c5d1e-aaaa-bbbb-cccc-000000000000", "USD 30.00",
		"https://example.com/orders/0b4c5d1e", []OrderLine{{Name: "Sticker", Quantity: 3, Total: "USD 30.00"}})

	assert.Equal(t, "Your Shop order 0b4c5d1e", msg.Subject)
	assert.Contains(t, msg.Text, "3 x Sticker")
	assert.Contains(t, msg.HTML, "https://example.com/orders/0b4c5d1e")
}

func TestBuildProviderMessages(t *testing.T) {
	from := Address{Email: "site@example.com", Name: "Site"}
	msg := Message{To: "a@example.com", ToName: "Ann", Subject: "S", Text: "T", HTML: "<p>T</p>", ReplyTo: "r@example.com"}

	sg := buildSendGridMessage(from, msg)
	assert.Equal(t, "site@example.com", sg.From.Address)
	assert.Equal(t, "r@example.com", sg.ReplyTo.Address)
	require.Len(t, sg.Personalizations, 1)
	assert.Equal(t, "a@example.com", sg.Personalizations[0].To[0].Address)

	rs := buildResendRequest(from, msg)
	assert.Equal(t, `"Site" <site@example.com>`, rs.From)
	assert.Equal(t, []string{`"Ann" <a@example.com>`}, rs.To)
	assert.Equal(t, "<p>T</p>", rs.Html)
}
