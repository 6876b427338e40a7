package mail

import "context"

// Mailer delivers transactional mail. Implementations must not block past
// their own dial/send timeouts; callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
