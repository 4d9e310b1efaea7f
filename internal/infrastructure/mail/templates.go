package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var htmlTemplates = template.Must(template.New("mail").Parse(`
{{define "otp"}}<p>Your sign-in code for <strong>{{.Site}}</strong> is:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>It expires in {{.Minutes}} minutes. If you did not try to sign in, change your password.</p>{{end}}
{{define "contact"}}<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
<p><em>{{.Subject}}</em></p>
<pre style="white-space:pre-wrap">{{.Body}}</pre>{{end}}
{{define "order"}}<p>Hi {{.Name}},</p>
<p>Thanks for your order <code>{{.OrderID}}</code> at {{.Site}}.</p>
<table>{{range .Lines}}<tr><td>{{.Quantity}} x {{.Name}}</td><td align="right">{{.Total}}</td></tr>{{end}}
<tr><td><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr></table>
<p>Track it at <a href="{{.TrackURL}}">{{.TrackURL}}</a>.</p>{{end}}
`))

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// OTPMessage is the one-time sign-in code e-mail
func OTPMessage(to, site, code string, ttl time.Duration) Message {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	data := struct {
		Site, Code string
		Minutes    int
	}{site, code, minutes}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s sign-in code", site),
		Text:    fmt.Sprintf("Your sign-in code for %s is %s. It expires in %d minutes.", site, code, minutes),
		HTML:    render("otp", data),
	}
}

// ContactMessage is the owner notification for a contact-form submission.
// Replies go straight to the sender.
func ContactMessage(owner, site, name, email, subject, body string) Message {
	if subject == "" {
		subject = "(no subject)"
	}
	data := struct{ Name, Email, Subject, Body string }{name, email, subject, body}
	return Message{
		To:      owner,
		Subject: fmt.Sprintf("[%s] %s", site, subject),
		Text:    fmt.Sprintf("%s <%s> wrote:\n\n%s\n\n%s", name, email, subject, body),
		HTML:    render("contact", data),
		ReplyTo: email,
	}
}

// OrderLine is one row of an order confirmation
type OrderLine struct {
	Name     string
	Quantity int
	Total    string
}

// OrderConfirmation is sent to the customer after an order is placed
func OrderConfirmation(to, name, site, orderID, total, trackURL string, lines []OrderLine) Message {
	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThanks for your order %s at %s.\n\n", name, orderID, site)
	for _, l := range lines {
		fmt.Fprintf(&text, "  %d x %s  %s\n", l.Quantity, l.Name, l.Total)
	}
	fmt.Fprintf(&text, "\nTotal: %s\nTrack it at %s\n", total, trackURL)

	data := struct {
		Name, OrderID, Site, Total, TrackURL string
		Lines                                []OrderLine
	}{name, orderID, site, total, trackURL, lines}
	return Message{
		To:      to,
		ToName:  name,
		Subject: fmt.Sprintf("Your %s order %s", site, shortID(orderID)),
		Text:    text.String(),
		HTML:    render("order", data),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
