package mail

import (
	"context"

	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

// LogMailer is the development fallback: it logs instead of delivering, so
// flows that depend on mail stay exercisable without an SMTP relay.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	telemetry.Info("mail.simulated", map[string]any{
		"to":      to,
		"subject": subject,
	})
	return nil
}

var _ Mailer = LogMailer{}
