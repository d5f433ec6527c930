package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// WebhookConfig configures a single incoming-webhook channel.
type WebhookConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// webhookChannel is the shared machinery behind the Slack and Discord
// channels: an HTTP client, a token bucket sized to the provider's
// webhook limit, and a payload encoder.
type webhookChannel struct {
	name    string
	config  WebhookConfig
	client  *http.Client
	limiter *rate.Limiter
	encode  func(summary Summary) ([]byte, error)
}

func (c *webhookChannel) Name() string {
	return c.name
}

func (c *webhookChannel) Send(ctx context.Context, summary Summary) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := c.encode(summary)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NewSlackChannel creates a Slack incoming-webhook channel.
// Slack allows 1 message per second per webhook.
func NewSlackChannel(config WebhookConfig) Channel {
	return &webhookChannel{
		name:    "slack",
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(1, 1),
		encode: func(summary Summary) ([]byte, error) {
			return json.Marshal(map[string]string{
				"text": summaryText(summary),
			})
		},
	}
}

// NewDiscordChannel creates a Discord webhook channel.
func NewDiscordChannel(config WebhookConfig) Channel {
	return &webhookChannel{
		name:    "discord",
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		encode: func(summary Summary) ([]byte, error) {
			return json.Marshal(map[string]string{
				"content": summaryText(summary),
			})
		},
	}
}

// summaryText renders the digest posted to chat channels. Only the
// first few problem lines are included; the full report lives on the
// audit's stdout.
func summaryText(summary Summary) string {
	const maxLines = 10

	var b strings.Builder
	fmt.Fprintf(&b, "Feed audit: %d of %d feeds have problems (run %s, took %s)",
		summary.Problems, summary.Feeds, summary.RunID, summary.Duration.Round(time.Millisecond))

	lines := summary.Lines
	truncated := 0
	if len(lines) > maxLines {
		truncated = len(lines) - maxLines
		lines = lines[:maxLines]
	}
	for _, line := range lines {
		b.WriteString("\n- ")
		b.WriteString(line)
	}
	if truncated > 0 {
		fmt.Fprintf(&b, "\n... and %d more", truncated)
	}
	return b.String()
}

// ValidateSlackWebhookURL checks that url is a plausible Slack incoming
// webhook: HTTPS on hooks.slack.com under /services/.
func ValidateSlackWebhookURL(webhookURL string) error {
	return validateWebhookURL(webhookURL, "hooks.slack.com", "/services/")
}

// ValidateDiscordWebhookURL checks that url is a plausible Discord
// webhook: HTTPS on discord.com under /api/webhooks/.
func ValidateDiscordWebhookURL(webhookURL string) error {
	return validateWebhookURL(webhookURL, "discord.com", "/api/webhooks/")
}
