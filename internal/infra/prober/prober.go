// Package prober performs the lightweight network probe that classifies
// a feed URL's reachability. It issues a HEAD request without following
// redirects so 3xx responses and their Location header stay observable.
package prober

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"feed-audit/internal/domain/entity"
)

// HTTPProber probes feed URLs over HTTP and maps the result to a
// ProbeOutcome. The decision policy, in priority order: unresolved host,
// connection failure, timeout, 3xx, 403, 404, malformed HTTP bytes.
// Everything else is healthy; unclassifiable failures become ProbeError.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTPProber. If client is nil a default client with
// connection pooling and TLS 1.2+ is used. Whatever client is supplied,
// redirect following is disabled so the first response is classified.
func New(client *http.Client, userAgent string) *HTTPProber {
	if client == nil {
		client = defaultClient()
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &HTTPProber{client: client, userAgent: userAgent}
}

// Probe executes one probe of url. The caller bounds the attempt with a
// context deadline; exceeding it classifies as ProbeTimeout. Probe never
// returns an error: every failure mode maps to an outcome.
func (p *HTTPProber) Probe(ctx context.Context, url string) entity.ProbeOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		// A URL that cannot form a request has no reachable host.
		return entity.ProbeOutcome{Status: entity.ProbeHostUnresolved}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return entity.ProbeOutcome{
			Status:   entity.ProbeRedirect,
			Location: resp.Header.Get("Location"),
		}
	case resp.StatusCode == http.StatusForbidden:
		return entity.ProbeOutcome{Status: entity.ProbeForbidden}
	case resp.StatusCode == http.StatusNotFound:
		return entity.ProbeOutcome{Status: entity.ProbeNotFound}
	default:
		return entity.ProbeOutcome{Status: entity.ProbeHealthy}
	}
}

// classifyError maps a transport error to an outcome, checking causes in
// the policy's priority order.
func classifyError(err error) entity.ProbeOutcome {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return entity.ProbeOutcome{Status: entity.ProbeHostUnresolved}
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return entity.ProbeOutcome{Status: entity.ProbeConnectionFailed}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return entity.ProbeOutcome{Status: entity.ProbeTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.ProbeOutcome{Status: entity.ProbeTimeout}
	}

	// net/http surfaces non-HTTP response bytes as a bare errors.New,
	// so string matching is the only handle on this case.
	if strings.Contains(err.Error(), "malformed HTTP") {
		return entity.ProbeOutcome{Status: entity.ProbeBadResponse}
	}

	return entity.ProbeOutcome{Status: entity.ProbeError, Reason: err.Error()}
}

func defaultClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
