// Package notify delivers confirmation codes to freshly registered
// email addresses. Delivery is best-effort: a lost notification is an
// inconvenience, a blocked registration handler is an outage.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Notifier attempts delivery of a confirmation code to a recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, code string) error
}

// SMTPConfig is the mail relay configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends confirmation codes over SMTP with STARTTLS.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) Send(ctx context.Context, recipient, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("notify: recipient address: %w", err)
	}
	msg.Subject("Registration confirmation code")
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your confirmation code: %s", code))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send to %s: %w", recipient, err)
	}
	return nil
}
