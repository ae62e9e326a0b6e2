package service

import (
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/anamaak-service/internal/config"
)

// Mailer sends notification email over SMTP.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer builds a mailer; returns nil when SMTP is not configured so
// callers can fall back to log-only notifications.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{cfg: cfg}
}

// Send delivers a single HTML message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	return dialer.DialAndSend(msg)
}
