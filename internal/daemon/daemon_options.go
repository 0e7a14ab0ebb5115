package daemon

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// HealthCheckInterval is how often the daemon probes every verified server.
	HealthCheckInterval time.Duration

	// API holds options forwarded to the API server.
	API []APIOption
}

// Option defines a functional option for configuring the daemon.
type Option func(*Options) error

// NewOptions creates daemon Options with optional configurations applied on
// top of the defaults.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		HealthCheckInterval: DefaultHealthCheckInterval(),
	}

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

// WithHealthCheckInterval sets how often the probe cycle runs.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", interval)
		}
		o.HealthCheckInterval = interval
		return nil
	}
}

// WithAPIOptions forwards options to the API server.
func WithAPIOptions(opts ...APIOption) Option {
	return func(o *Options) error {
		o.API = append(o.API, opts...)
		return nil
	}
}

// DefaultHealthCheckInterval is the default gap between probe cycles.
func DefaultHealthCheckInterval() time.Duration {
	return 5 * time.Minute
}
