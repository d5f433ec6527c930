package notify

import (
	"fmt"
	"net/url"
	"strings"
)

func validateWebhookURL(webhookURL, wantHost, wantPathPrefix string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL is empty")
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use HTTPS, got %q", u.Scheme)
	}
	if u.Host != wantHost {
		return fmt.Errorf("unexpected webhook host %q, want %q", u.Host, wantHost)
	}
	if !strings.HasPrefix(u.Path, wantPathPrefix) {
		return fmt.Errorf("unexpected webhook path %q, want prefix %q", u.Path, wantPathPrefix)
	}
	return nil
}
