package mail

import "context"

// Mailer delivers the password-reset messages. Implementations own the
// transport (SMTP, a provider API, a test double); the service only hands
// over the recipient and, for reset requests, the ready-made reset URL.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendPasswordResetConfirmation(ctx context.Context, to string) error
}
