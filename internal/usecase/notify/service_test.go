package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/internal/observability/logging"
)

type recordChannel struct {
	name string
	err  error

	mu        sync.Mutex
	summaries []Summary
}

func (c *recordChannel) Name() string { return c.name }

func (c *recordChannel) Send(ctx context.Context, summary Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = append(c.summaries, summary)
	return c.err
}

func (c *recordChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.summaries)
}

func testSummary() Summary {
	return Summary{
		RunID:    "run-1",
		Feeds:    10,
		Problems: 2,
		Lines: []string{
			"http://a.example/feed Forbidden",
			"http://b.example/feed Connection timed out",
		},
		Duration: 3 * time.Second,
	}
}

func TestService_NotifyReport_AllChannels(t *testing.T) {
	ch1 := &recordChannel{name: "one"}
	ch2 := &recordChannel{name: "two"}
	svc := NewService([]Channel{ch1, ch2}, 4, logging.NewLogger())

	svc.NotifyReport(context.Background(), testSummary())
	require.NoError(t, svc.Shutdown(context.Background()))

	assert.Equal(t, 1, ch1.count())
	assert.Equal(t, 1, ch2.count())
}

func TestService_NotifyReport_FailureDoesNotPropagate(t *testing.T) {
	failing := &recordChannel{name: "broken", err: errors.New("boom")}
	ok := &recordChannel{name: "fine"}
	svc := NewService([]Channel{failing, ok}, 2, logging.NewLogger())

	// Must not panic or block.
	svc.NotifyReport(context.Background(), testSummary())
	require.NoError(t, svc.Shutdown(context.Background()))

	assert.Equal(t, 1, ok.count())
}

func TestService_NotifyReport_NoChannels(t *testing.T) {
	svc := NewService(nil, 2, logging.NewLogger())
	svc.NotifyReport(context.Background(), testSummary())
	require.NoError(t, svc.Shutdown(context.Background()))
}

func TestService_NotifyReport_AssignsRunID(t *testing.T) {
	ch := &recordChannel{name: "one"}
	svc := NewService([]Channel{ch}, 1, logging.NewLogger())

	summary := testSummary()
	summary.RunID = ""
	svc.NotifyReport(context.Background(), summary)
	require.NoError(t, svc.Shutdown(context.Background()))

	require.Equal(t, 1, ch.count())
	assert.NotEmpty(t, ch.summaries[0].RunID)
}

func TestSlackChannel_Send(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewSlackChannel(WebhookConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, ch.Send(context.Background(), testSummary()))

	assert.Contains(t, payload["text"], "2 of 10 feeds have problems")
	assert.Contains(t, payload["text"], "http://a.example/feed Forbidden")
}

func TestDiscordChannel_Send_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	ch := NewDiscordChannel(WebhookConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})
	err := ch.Send(context.Background(), testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSummaryText_Truncation(t *testing.T) {
	summary := testSummary()
	summary.Lines = nil
	for i := 0; i < 15; i++ {
		summary.Lines = append(summary.Lines, "http://x.example/feed Not found")
	}
	summary.Problems = 15

	text := summaryText(summary)
	assert.Contains(t, text, "... and 5 more")
	assert.Equal(t, 10, strings.Count(text, "\n- "))
}

func TestValidateSlackWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid", url: "https://hooks.slack.com/services/T000/B000/XXX"},
		{name: "empty", url: "", wantErr: true},
		{name: "http scheme", url: "http://hooks.slack.com/services/T000/B000/XXX", wantErr: true},
		{name: "wrong host", url: "https://example.com/services/T000", wantErr: true},
		{name: "wrong path", url: "https://hooks.slack.com/other/T000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlackWebhookURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDiscordWebhookURL(t *testing.T) {
	assert.NoError(t, ValidateDiscordWebhookURL("https://discord.com/api/webhooks/123/abc"))
	assert.Error(t, ValidateDiscordWebhookURL("https://discord.com/api/other/123"))
	assert.Error(t, ValidateDiscordWebhookURL("https://discordapp.example/api/webhooks/123"))
}
