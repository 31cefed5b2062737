package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/mmynk/chama/internal/config"
)

// Sender delivers a plain-text message to one address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	cfg  config.SMTP
	auth smtp.Auth
}

// NewMailer returns a Mailer for cfg. Authentication is skipped when no
// username is configured.
func NewMailer(cfg config.SMTP) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if err := e.Send(m.cfg.Addr(), m.auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.Info("Email sent", "to", to, "subject", subject)
	return nil
}

// LogSender only logs messages. It stands in for Mailer when SMTP is not
// configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("Email delivery disabled, dropping message", "to", to, "subject", subject)
	return nil
}

// NewSender picks a Mailer when cfg is usable and a LogSender otherwise.
func NewSender(cfg config.SMTP) Sender {
	if cfg.Enabled() {
		return NewMailer(cfg)
	}
	return LogSender{}
}
