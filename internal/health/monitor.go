// Package health probes registered endpoints on a bounded worker pool and
// maintains the rolling health metrics that feed discovery and trust scoring.
package health

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/errors"
	"github.com/mcpdex/mcpdex/internal/store"
	"github.com/mcpdex/mcpdex/internal/trust"
)

const (
	// latencyAlpha is the EMA weight for new latency samples.
	latencyAlpha = 0.2

	// uptimeAlpha is the decay weight for the running uptime average,
	// approximating a 100-probe rolling window.
	uptimeAlpha = 0.01

	// maxConsecutiveFailures forces unhealthy regardless of uptime.
	maxConsecutiveFailures = 3

	uptimeHealthyThreshold  = 99.0
	uptimeDegradedThreshold = 95.0
)

// DomainHealth pairs a domain's health metrics with its current trust score.
type DomainHealth struct {
	Domain     string
	Metrics    domain.HealthMetrics
	TrustScore int
}

// Monitor owns probing and health-metric maintenance for verified servers.
// Scheduling is external: callers invoke RunOnce on whatever cadence they need.
// NewMonitor should be used to create instances of Monitor.
type Monitor struct {
	logger       hclog.Logger
	store        store.Store
	prober       Prober
	concurrency  int64
	probeTimeout time.Duration
	now          func() time.Time
}

// NewMonitor creates a health monitor backed by the given store.
func NewMonitor(logger hclog.Logger, s store.Store, opt ...Option) (*Monitor, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if s == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		logger:       logger.Named("health"),
		store:        s,
		prober:       opts.Prober,
		concurrency:  opts.Concurrency,
		probeTimeout: opts.ProbeTimeout,
		now:          opts.Now,
	}, nil
}

// RunOnce probes every verified server concurrently, bounded by the pool
// size. Each probe carries its own timeout so one hanging endpoint cannot
// starve the rest. Returns once all probes for this cycle complete.
func (m *Monitor) RunOnce(ctx context.Context) error {
	snapshot, err := m.store.GetAll(ctx, store.CollectionServers)
	if err != nil {
		return fmt.Errorf("failed to snapshot server records: %w", err)
	}

	sem := semaphore.NewWeighted(m.concurrency)
	var wg sync.WaitGroup

	for dom, raw := range snapshot {
		var rec domain.ServerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			m.logger.Warn("Skipping undecodable server record", "domain", dom, "error", err)
			continue
		}
		if !rec.Verification.DNSVerified {
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(dom, endpoint string) {
			defer wg.Done()
			defer sem.Release(1)

			probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
			defer cancel()

			latency, probeErr := m.prober.Probe(probeCtx, endpoint)
			if err := m.apply(ctx, dom, latency, probeErr == nil); err != nil {
				m.logger.Error("Failed to record probe result", "domain", dom, "error", err)
			}
		}(dom, rec.Endpoint)
	}

	wg.Wait()
	return nil
}

// Check returns the health metrics and trust score for a single domain.
func (m *Monitor) Check(ctx context.Context, dom string) (*DomainHealth, error) {
	raw, err := m.store.Get(ctx, store.CollectionServers, dom)
	if err != nil {
		if stdErrors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", errors.ErrServerNotFound, dom)
		}
		return nil, err
	}

	var rec domain.ServerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode server record for '%s': %w", dom, err)
	}

	return &DomainHealth{
		Domain:     rec.Domain,
		Metrics:    rec.HealthSnapshot(),
		TrustScore: rec.TrustScore,
	}, nil
}

// CheckAll returns health for each requested domain, omitting unknown domains.
func (m *Monitor) CheckAll(ctx context.Context, domains []string) ([]DomainHealth, error) {
	results := make([]DomainHealth, 0, len(domains))
	for _, dom := range domains {
		dh, err := m.Check(ctx, dom)
		if err != nil {
			if stdErrors.Is(err, errors.ErrServerNotFound) {
				continue
			}
			return nil, err
		}
		results = append(results, *dh)
	}
	return results, nil
}

// apply folds one probe outcome into the domain's stored health metrics and
// recomputes the trust score, atomically against concurrent updates.
func (m *Monitor) apply(ctx context.Context, dom string, latency time.Duration, ok bool) error {
	now := m.now().UTC()

	return m.store.Update(ctx, store.CollectionServers, dom, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrServerNotFound, dom)
		}

		var rec domain.ServerRecord
		if err := json.Unmarshal(current, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode server record for '%s': %w", dom, err)
		}

		h := rec.HealthSnapshot()
		sampleMs := float64(latency.Milliseconds())

		if ok {
			if h.Known() {
				h.AvgResponseTimeMs = latencyAlpha*sampleMs + (1-latencyAlpha)*h.AvgResponseTimeMs
				h.UptimePercentage = uptimeAlpha*100 + (1-uptimeAlpha)*h.UptimePercentage
			} else {
				h.AvgResponseTimeMs = sampleMs
				h.UptimePercentage = 100
			}
			h.ConsecutiveFailures = 0
		} else {
			if h.Known() {
				h.UptimePercentage = (1 - uptimeAlpha) * h.UptimePercentage
			} else {
				h.UptimePercentage = 0
			}
			h.ConsecutiveFailures++
		}

		h.TotalChecks++
		h.LastCheck = &now
		h.Status = statusFor(h)

		rec.Health = &h
		rec.TrustScore = trust.Score(rec.Verification, h, rec.CommunityRating)
		rec.UpdatedAt = now

		return json.Marshal(rec)
	})
}

// statusFor derives the rolled-up status. Three consecutive failures force
// unhealthy regardless of how high the uptime average still is.
func statusFor(h domain.HealthMetrics) domain.HealthStatus {
	if h.ConsecutiveFailures >= maxConsecutiveFailures {
		return domain.HealthStatusUnhealthy
	}
	switch {
	case h.UptimePercentage >= uptimeHealthyThreshold:
		return domain.HealthStatusHealthy
	case h.UptimePercentage >= uptimeDegradedThreshold:
		return domain.HealthStatusDegraded
	default:
		return domain.HealthStatusUnhealthy
	}
}
