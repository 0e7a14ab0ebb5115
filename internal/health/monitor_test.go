package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/errors"
	"github.com/mcpdex/mcpdex/internal/store"
)

// stubProber returns a fixed latency and error, recording probed endpoints.
type stubProber struct {
	mu      sync.Mutex
	latency time.Duration
	err     error
	probed  []string
}

func (p *stubProber) Probe(_ context.Context, endpoint string) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, endpoint)
	return p.latency, p.err
}

func (p *stubProber) endpoints() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.probed...)
}

func newTestMonitor(t *testing.T, prober Prober) (*Monitor, store.Store) {
	t.Helper()

	s := store.NewMemory()
	m, err := NewMonitor(hclog.NewNullLogger(), s, WithProber(prober))
	require.NoError(t, err)
	return m, s
}

func seedRecord(t *testing.T, s store.Store, rec domain.ServerRecord) {
	t.Helper()

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, s.Set(t.Context(), store.CollectionServers, rec.Domain, data))
}

func loadRecord(t *testing.T, s store.Store, dom string) domain.ServerRecord {
	t.Helper()

	raw, err := s.Get(t.Context(), store.CollectionServers, dom)
	require.NoError(t, err)

	var rec domain.ServerRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	return rec
}

func verifiedRecord(dom, endpoint string) domain.ServerRecord {
	return domain.ServerRecord{
		Domain:       dom,
		Endpoint:     endpoint,
		Verification: domain.Verification{DNSVerified: true, Method: "dns-txt"},
	}
}

func TestRunOnceSkipsUnverifiedRecords(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 50 * time.Millisecond}
	m, s := newTestMonitor(t, prober)

	seedRecord(t, s, verifiedRecord("verified.com", "https://verified.com/mcp"))
	seedRecord(t, s, domain.ServerRecord{Domain: "pending.com", Endpoint: "https://pending.com/mcp"})

	require.NoError(t, m.RunOnce(t.Context()))
	require.Equal(t, []string{"https://verified.com/mcp"}, prober.endpoints())

	require.Nil(t, loadRecord(t, s, "pending.com").Health)
}

func TestRunOnceFirstProbeSeedsMetrics(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 80 * time.Millisecond}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("example.com", "https://example.com/mcp"))

	require.NoError(t, m.RunOnce(t.Context()))

	rec := loadRecord(t, s, "example.com")
	require.NotNil(t, rec.Health)
	require.Equal(t, domain.HealthStatusHealthy, rec.Health.Status)
	require.InDelta(t, 100, rec.Health.UptimePercentage, 0.0001)
	require.InDelta(t, 80, rec.Health.AvgResponseTimeMs, 0.0001)
	require.Equal(t, 0, rec.Health.ConsecutiveFailures)
	require.Equal(t, 1, rec.Health.TotalChecks)
	require.NotNil(t, rec.Health.LastCheck)

	// 40 uptime + (20 - 80/50) latency + 20 verification = floor(78.4)
	require.Equal(t, 78, rec.TrustScore)
}

func TestRunOnceSmoothsLatency(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 100 * time.Millisecond}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("example.com", "https://example.com/mcp"))

	require.NoError(t, m.RunOnce(t.Context()))

	prober.mu.Lock()
	prober.latency = 200 * time.Millisecond
	prober.mu.Unlock()

	require.NoError(t, m.RunOnce(t.Context()))

	rec := loadRecord(t, s, "example.com")
	// 0.2*200 + 0.8*100
	require.InDelta(t, 120, rec.Health.AvgResponseTimeMs, 0.0001)
	require.Equal(t, 2, rec.Health.TotalChecks)
}

func TestConsecutiveFailuresForceUnhealthy(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 50 * time.Millisecond}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("example.com", "https://example.com/mcp"))

	// Establish a perfect baseline.
	require.NoError(t, m.RunOnce(t.Context()))
	require.Equal(t, domain.HealthStatusHealthy, loadRecord(t, s, "example.com").Health.Status)

	prober.mu.Lock()
	prober.err = fmt.Errorf("connection refused")
	prober.mu.Unlock()

	// Two failures dent uptime but do not yet force unhealthy.
	require.NoError(t, m.RunOnce(t.Context()))
	require.NoError(t, m.RunOnce(t.Context()))

	rec := loadRecord(t, s, "example.com")
	require.Equal(t, 2, rec.Health.ConsecutiveFailures)
	require.NotEqual(t, domain.HealthStatusUnhealthy, rec.Health.Status)

	// The third failure trips the consecutive-failure rule even though the
	// decayed uptime average still reads ~97%.
	require.NoError(t, m.RunOnce(t.Context()))

	rec = loadRecord(t, s, "example.com")
	require.Equal(t, 3, rec.Health.ConsecutiveFailures)
	require.Equal(t, domain.HealthStatusUnhealthy, rec.Health.Status)
	require.InDelta(t, 97.03, rec.Health.UptimePercentage, 0.01)
}

func TestRecoveryResetsConsecutiveFailures(t *testing.T) {
	t.Parallel()

	prober := &stubProber{err: fmt.Errorf("down")}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("example.com", "https://example.com/mcp"))

	for range 3 {
		require.NoError(t, m.RunOnce(t.Context()))
	}
	require.Equal(t, 3, loadRecord(t, s, "example.com").Health.ConsecutiveFailures)

	prober.mu.Lock()
	prober.err = nil
	prober.latency = 60 * time.Millisecond
	prober.mu.Unlock()

	require.NoError(t, m.RunOnce(t.Context()))
	require.Equal(t, 0, loadRecord(t, s, "example.com").Health.ConsecutiveFailures)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 40 * time.Millisecond}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("example.com", "https://example.com/mcp"))
	require.NoError(t, m.RunOnce(t.Context()))

	dh, err := m.Check(t.Context(), "example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", dh.Domain)
	require.Equal(t, domain.HealthStatusHealthy, dh.Metrics.Status)
	require.Positive(t, dh.TrustScore)

	_, err = m.Check(t.Context(), "unknown.com")
	require.ErrorIs(t, err, errors.ErrServerNotFound)
}

func TestCheckAllOmitsUnknownDomains(t *testing.T) {
	t.Parallel()

	prober := &stubProber{latency: 40 * time.Millisecond}
	m, s := newTestMonitor(t, prober)
	seedRecord(t, s, verifiedRecord("a.com", "https://a.com/mcp"))
	seedRecord(t, s, verifiedRecord("b.com", "https://b.com/mcp"))
	require.NoError(t, m.RunOnce(t.Context()))

	results, err := m.CheckAll(t.Context(), []string{"a.com", "unknown.com", "b.com"})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestNewMonitorValidation(t *testing.T) {
	t.Parallel()

	_, err := NewMonitor(nil, store.NewMemory())
	require.ErrorContains(t, err, "logger cannot be nil")

	_, err = NewMonitor(hclog.NewNullLogger(), nil)
	require.ErrorContains(t, err, "store cannot be nil")
}
