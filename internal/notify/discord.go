// Package notify delivers "your move" messages to a Discord webhook.
// Delivery is fire-and-forget from the protocol's point of view: a
// failed notification never blocks or corrupts local state.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoWebhook is returned when no webhook URL is configured.
var ErrNoWebhook = errors.New("no webhook url configured")

// Discord posts messages to a single webhook.
type Discord struct {
	webhookURL string
	client     *http.Client
	log        zerolog.Logger
}

// NewDiscord builds a notifier for the webhook URL. A nil client gets a
// default with a short timeout.
func NewDiscord(webhookURL string, client *http.Client, log zerolog.Logger) *Discord {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Discord{webhookURL: webhookURL, client: client, log: log}
}

// TurnMessage composes the standard move notification.
func TurnMessage(opponentName string, round int, shareURL string) string {
	if opponentName == "" {
		opponentName = "your opponent"
	}
	return fmt.Sprintf("%s — it's your move in round %d: %s", opponentName, round, shareURL)
}

// Send posts a message to the webhook.
func (d *Discord) Send(ctx context.Context, content string) error {
	if d.webhookURL == "" {
		return ErrNoWebhook
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// SendAsync posts in the background and reports the outcome to done
// (optional). The caller never waits.
func (d *Discord) SendAsync(content string, done func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := d.Send(ctx, content)
		if err != nil {
			d.log.Warn().Err(err).Msg("discord notification failed")
		}
		if done != nil {
			done(err)
		}
	}()
}
