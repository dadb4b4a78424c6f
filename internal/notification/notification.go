// Package notification delivers best-effort alerts for workflow
// events. Delivery failures never affect the business operation that
// triggered them.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nattapongw/banchee/internal"
)

type Dispatcher interface {
	Notify(ctx context.Context, companyID int64, kind string, payload map[string]interface{}) error
}

// WebhookDispatcher posts JSON to a configured endpoint, typically a
// chat integration relay.
type WebhookDispatcher struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookDispatcher(cfg internal.NotificationConfig, logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		url: cfg.WebhookURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type webhookMessage struct {
	CompanyID int64                  `json:"company_id"`
	Kind      string                 `json:"kind"`
	SentAt    time.Time              `json:"sent_at"`
	Payload   map[string]interface{} `json:"payload"`
}

func (d *WebhookDispatcher) Notify(ctx context.Context, companyID int64, kind string, payload map[string]interface{}) error {
	body, err := json.Marshal(webhookMessage{
		CompanyID: companyID,
		Kind:      kind,
		SentAt:    time.Now(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}

	return nil
}

// LogDispatcher writes notifications to the application log. Used when
// no webhook is configured and in tests.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Notify(_ context.Context, companyID int64, kind string, payload map[string]interface{}) error {
	d.logger.Info("notification dispatched",
		"company_id", companyID,
		"kind", kind,
		"payload", payload)
	return nil
}

// FromConfig picks the webhook dispatcher when a URL is configured and
// falls back to logging otherwise.
func FromConfig(cfg internal.NotificationConfig, logger *slog.Logger) Dispatcher {
	if cfg.WebhookURL != "" {
		return NewWebhookDispatcher(cfg, logger)
	}
	return NewLogDispatcher(logger)
}
