// Package notify delivers absence requests to the admin review channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AbsenceRequest is the payload posted for admin review.
type AbsenceRequest struct {
	RequestID string    `json:"request_id"`
	MemberID  string    `json:"member_id"`
	Reason    string    `json:"reason"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Notifier is the outbound port for absence review notifications.
type Notifier interface {
	AbsenceRequested(ctx context.Context, req AbsenceRequest) error
}

// Webhook posts absence requests as JSON to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier with a short client timeout so a
// slow review endpoint cannot stall event handling.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *Webhook) AbsenceRequested(ctx context.Context, req AbsenceRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("review webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Nop discards notifications; used when no review webhook is configured.
type Nop struct{}

func (Nop) AbsenceRequested(context.Context, AbsenceRequest) error { return nil }
