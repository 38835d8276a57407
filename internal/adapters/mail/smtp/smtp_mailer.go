package smtp

import (
	"context"
	"fmt"

	"github.com/Velarin/ChatHaven/auth-service/internal/infra/config"
	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers password-reset mail over SMTP. A nil send error only
// means the upstream relay accepted the message.
type Mailer struct {
	client *gomail.Client
	from   string
}

func New(cfg *config.Config) (*Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Mailer{client: client, from: cfg.SMTPFrom}, nil
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(`<p>Someone (hopefully you) requested a password reset for this account.</p>
<p><a href=%q>Reset your password</a></p>
<p>The link is valid for 15 minutes. If you did not request a reset, you can ignore this mail.</p>`, resetURL)

	return m.send(ctx, to, "Reset your password", body)
}

func (m *Mailer) SendPasswordResetConfirmation(ctx context.Context, to string) error {
	body := `<p>Your password was just changed.</p>
<p>If this was not you, request a new password reset immediately.</p>`

	return m.send(ctx, to, "Your password was changed", body)
}
