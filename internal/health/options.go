package health

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the health monitor.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Prober performs the individual endpoint checks.
	Prober Prober

	// Concurrency bounds how many probes run at once.
	Concurrency int64

	// ProbeTimeout bounds each individual probe, independent of the others.
	ProbeTimeout time.Duration

	// Now supplies the current time; overridable for tests.
	Now func() time.Time
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithProber configures the endpoint prober.
func WithProber(p Prober) Option {
	return func(o *Options) error {
		if p == nil {
			return fmt.Errorf("prober cannot be nil")
		}
		o.Prober = p
		return nil
	}
}

// WithConcurrency configures the probe worker pool size.
func WithConcurrency(n int64) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		o.Concurrency = n
		return nil
	}
}

// WithProbeTimeout configures the per-probe deadline.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.ProbeTimeout = timeout
		return nil
	}
}

// WithClock configures the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Now = now
		return nil
	}
}

// DefaultConcurrency is the default probe worker pool size.
func DefaultConcurrency() int64 {
	return 16
}

// DefaultProbeTimeout is the default deadline for a single probe.
func DefaultProbeTimeout() time.Duration {
	return 5 * time.Second
}

func defaultOptions() Options {
	return Options{
		Prober:       NewHTTPProber(),
		Concurrency:  DefaultConcurrency(),
		ProbeTimeout: DefaultProbeTimeout(),
		Now:          time.Now,
	}
}
