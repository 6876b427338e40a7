package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/matheuss-dsr/dedicandos/internal/shared/config"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

// SMTPMailer sends mail through a plain-auth SMTP relay. STARTTLS is
// negotiated automatically when the server offers it.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer builds a mailer from config. It returns nil when no SMTP
// host is configured; callers fall back to the log mailer.
func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return nil
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		htmlBody + "\r\n")

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	telemetry.Info("mail.sent", map[string]any{
		"to":      to,
		"subject": subject,
	})
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
