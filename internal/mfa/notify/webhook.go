package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookSender posts each message as JSON to a relay that owns the vendor
// integration (SMS provider, SMTP). Any 2xx response counts as accepted.
type WebhookSender struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookSender returns a sender for url. token, when set, is sent as a
// bearer token. A nil client gets a default one with a 10s timeout.
func NewWebhookSender(url, token string, client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: defaultWebhookTimeout}
	}
	return &WebhookSender{url: url, token: token, client: client}
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}
	return nil
}
