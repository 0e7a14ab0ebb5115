package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober performs a single endpoint check, returning observed latency.
// It is an interface so tests can substitute deterministic outcomes.
type Prober interface {
	Probe(ctx context.Context, endpoint string) (time.Duration, error)
}

// HTTPProber checks endpoints with a GET request. Timeouts, TLS failures and
// non-2xx statuses all count as probe failures.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober using a dedicated HTTP client.
// Per-probe deadlines come from the context, not the client.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, endpoint string) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build probe request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return latency, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return latency, fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return latency, nil
}
