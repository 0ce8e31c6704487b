package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier delivers one-off messages to a user. Delivery failure must never
// fail the request that triggered it; callers log and move on.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailgun posts through the Mailgun messages API.
type Mailgun struct {
	Domain string
	APIKey string
	Client *http.Client
}

func NewMailgun(domain, apiKey string) *Mailgun {
	return &Mailgun{
		Domain: domain,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, body string) error {
	form := url.Values{}
	form.Set("from", fmt.Sprintf("Stores API <mailgun@%s>", m.Domain))
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", body)

	endpoint := fmt.Sprintf("https://api.mailgun.net/v3/%s/messages", m.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.APIKey)

	res, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("mailgun: %s", res.Status)
	}
	return nil
}

// Log is used when Mailgun is not configured; it records the message
// instead of delivering it.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) Send(_ context.Context, to, subject, _ string) error {
	l.Logger.Info("notification skipped, no mail provider configured", "to", to, "subject", subject)
	return nil
}
