package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, e Email) (*Receipt, error)
}

const DefaultResendURL = "https://api.resend.com"

// ResendMailer sends through the Resend SDK. baseURL points it at another
// host, e.g. a local stub.
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(baseURL, apiKey string, timeout time.Duration) (*ResendMailer, error) {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("resend url: %w", err)
	}
	c := resend.NewCustomClient(&http.Client{Timeout: timeout}, apiKey)
	c.BaseURL = u
	return &ResendMailer{client: c}, nil
}

func (m *ResendMailer) Send(ctx context.Context, e Email) (*Receipt, error) {
	resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		Html:    e.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("resend: %w", err)
	}
	return &Receipt{ID: resp.Id}, nil
}
