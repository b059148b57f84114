package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/hibiken/asynq"
)

// webhookEnvelope is the JSON body POSTed to the configured webhook URL.
type webhookEnvelope struct {
	Event     string              `json:"event"`
	Timestamp time.Time           `json:"timestamp"`
	Data      domain.Notification `json:"data"`
}

// DeliveryHandler delivers queued notifications to an external webhook.
type DeliveryHandler struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeliveryHandler creates a handler that POSTs notifications to webhookURL.
// An empty URL makes delivery a no-op; the queue still drains.
func NewDeliveryHandler(webhookURL string, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ProcessTask handles one queued notification. Returning an error lets asynq
// retry with backoff up to the task's MaxRetry.
func (h *DeliveryHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var notification domain.Notification
	if err := json.Unmarshal(task.Payload(), &notification); err != nil {
		h.logger.ErrorContext(ctx, "Failed to unmarshal notification payload", "error", err)
		// Malformed payloads never become valid; drop instead of retrying.
		return nil
	}

	if h.webhookURL == "" {
		h.logger.InfoContext(ctx, "No webhook URL configured, dropping notification",
			"kind", string(notification.Kind), "account_id", notification.AccountID)
		return nil
	}

	envelope := webhookEnvelope{
		Event:     string(notification.Kind),
		Timestamp: time.Now().UTC(),
		Data:      notification,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	h.logger.InfoContext(ctx, "Notification delivered",
		"kind", string(notification.Kind),
		"account_id", notification.AccountID,
		"status", resp.StatusCode)
	return nil
}
