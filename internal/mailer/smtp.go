package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"homeaudit/internal/config"
)

// smtpNotifier sends mail through a plain SMTP relay, the usual setup for
// scheduled jobs on an internal network.
type smtpNotifier struct {
	client *mail.Client
}

// NewSMTP creates a Notifier backed by the configured SMTP relay.
func NewSMTP(cfg config.SMTPConfig) (Notifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &smtpNotifier{client: client}, nil
}

func (n *smtpNotifier) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
