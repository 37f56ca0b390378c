package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"staybook/internal/app/policies"
	"staybook/internal/infra/config"
)

// SMTPMailer sends plain-text mail over SMTP with optional AUTH.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPaymentConfirmation(ctx context.Context, msg policies.PaymentConfirmation) error {
	subject := "Your booking is confirmed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment of %s for %q went through and your booking is confirmed.\n\nSee you soon!\n",
		msg.RecipientName, msg.Amount, msg.ListingTitle,
	)
	return m.send(msg.RecipientEmail, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(b.String()))
}
