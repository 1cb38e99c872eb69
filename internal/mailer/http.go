package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/teamboardhq/teamboard/pkg/httpclient"
)

// providerServiceName labels downstream errors from the mail provider.
const providerServiceName = "mail-provider"

// HTTPMailer delivers mail by posting JSON to an HTTP mail provider. The
// underlying client carries a circuit breaker so a struggling provider is
// shed quickly instead of holding worker goroutines on retries.
type HTTPMailer struct {
	client *httpclient.CircuitBreakerClient
	url    string
	apiKey string
	from   string
	logger *slog.Logger
}

// NewHTTPMailer creates a mailer that posts to the provider's send endpoint.
func NewHTTPMailer(client *httpclient.CircuitBreakerClient, url, apiKey, from string, logger *slog.Logger) *HTTPMailer {
	return &HTTPMailer{
		client: client,
		url:    url,
		apiKey: apiKey,
		from:   from,
		logger: logger,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Deliver posts the message to the provider.
func (m *HTTPMailer) Deliver(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp, providerServiceName)
	}

	m.logger.DebugContext(ctx, "mail delivered",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
