// Package notifications delivers alert toggle events to an optional ops
// webhook. Delivery is best-effort: failures are logged and never surfaced
// to the user.
package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	models "tonpulse/database/models_pkg"
)

// WebhookManager posts alert events to a configured webhook URL
type WebhookManager struct {
	url    string
	client *http.Client
}

// WebhookPayload is the JSON body sent to the webhook
type WebhookPayload struct {
	Event        string    `json:"event"`
	UserID       string    `json:"userId"`
	TokenAddress string    `json:"tokenAddress"`
	TokenSymbol  string    `json:"tokenSymbol,omitempty"`
	TokenName    string    `json:"tokenName,omitempty"`
	AlertKind    string    `json:"alertKind"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message"`
}

// NewWebhookManager creates a webhook manager. An empty URL disables
// delivery; all methods become no-ops.
func NewWebhookManager(url string) *WebhookManager {
	return &WebhookManager{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a webhook URL is configured
func (wm *WebhookManager) Enabled() bool {
	return wm.url != ""
}

// SendAlertToggle delivers one alert toggle event asynchronously
func (wm *WebhookManager) SendAlertToggle(entry *models.AlertHistoryEntry) {
	if !wm.Enabled() || entry == nil {
		return
	}

	label := entry.TokenSymbol
	if label == "" {
		label = entry.TokenAddress
	}
	payload := WebhookPayload{
		Event:        "alert_toggle",
		UserID:       entry.UserID,
		TokenAddress: entry.TokenAddress,
		TokenSymbol:  entry.TokenSymbol,
		TokenName:    entry.TokenName,
		AlertKind:    entry.Kind,
		Action:       entry.Action,
		Timestamp:    entry.Timestamp,
		Message:      fmt.Sprintf("%s alerts %s for %s", entry.Kind, entry.Action, label),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	go wm.deliver(body)
}

func (wm *WebhookManager) deliver(body []byte) {
	resp, err := wm.client.Post(wm.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️  Webhook delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️  Webhook returned status %d", resp.StatusCode)
	}
}
