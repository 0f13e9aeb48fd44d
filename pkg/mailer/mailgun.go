package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

var ErrMailgunNotConfigured = errors.New("mailgun not configured")

// Mailgun wraps a Mailgun client bound to one sending domain.
type Mailgun struct {
	Domain string
	Sender string
	client *mg.MailgunImpl
}

// NewMailgun returns nil when domain, key or sender is missing.
func NewMailgun(domain, apiKey, sender string) *Mailgun {
	if domain == "" || apiKey == "" || sender == "" {
		return nil
	}
	return &Mailgun{Domain: domain, Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
// Tags (e.g. the template name) show up in Mailgun analytics.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string, tags ...string) (string, error) {
	if m == nil || m.client == nil {
		return "", ErrMailgunNotConfigured
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		if err := msg.AddTag(t); err != nil {
			return "", err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, id, err := m.client.Send(c, msg)
	return id, err
}
