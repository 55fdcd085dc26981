// Package notification delivers escalation notices to the downstream
// notification subsystem.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/sony/gobreaker/v2"
)

// WebhookNotifier posts escalation payloads to a configured endpoint. A
// circuit breaker keeps a dead endpoint from slowing every sweep down.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewWebhookNotifier creates a notifier for the given endpoint.
func NewWebhookNotifier(url string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "escalation-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  logger,
	}
}

// escalationPayload is the wire format posted to the endpoint.
type escalationPayload struct {
	EscalationID  string   `json:"escalation_id"`
	WorkRequestID string   `json:"work_request_id"`
	Reason        string   `json:"reason"`
	RuleName      string   `json:"rule_name,omitempty"`
	Action        string   `json:"action,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`
	CurrentScore  float64  `json:"current_score"`
	EscalatedAt   string   `json:"escalated_at"`
}

// NotifyEscalation implements services.Notifier.
func (n *WebhookNotifier) NotifyEscalation(ctx context.Context, e *escalation.PriorityEscalation) error {
	payload, err := json.Marshal(escalationPayload{
		EscalationID:  e.ID.String(),
		WorkRequestID: e.WorkRequestID.String(),
		Reason:        e.Reason,
		RuleName:      e.RuleName,
		Action:        e.Action,
		Recipients:    e.Recipients,
		CurrentScore:  e.CurrentScore,
		EscalatedAt:   e.EscalatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, payload)
	})
	return err
}

func (n *WebhookNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}
