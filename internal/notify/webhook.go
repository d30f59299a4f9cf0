package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/dex-buybot/internal/version"
)

// Sender delivers one payload.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// WebhookError is returned when the webhook responds with a non-2xx status.
type WebhookError struct {
	StatusCode int
	Body       []byte
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.StatusCode, bytes.TrimSpace(e.Body))
}

// WebhookSender posts payloads to a Discord webhook URL.
type WebhookSender struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookSender creates a sender for the given webhook URL.
func NewWebhookSender(url string, timeout time.Duration, logger *slog.Logger) *WebhookSender {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send posts a single embed.
func (s *WebhookSender) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(webhookMessage{Embeds: []Payload{p}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &WebhookError{StatusCode: resp.StatusCode, Body: respBody}
	}

	s.logger.Debug("webhook delivered", "title", p.Title, "status", resp.StatusCode)
	return nil
}
