package verify

import (
	"fmt"
	"time"

	"github.com/mcpdex/mcpdex/internal/domain"
)

// Options contains optional configuration for the verification service.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Resolver performs DNS TXT lookups.
	Resolver TXTResolver

	// LookupTimeout bounds a single DNS lookup inside CheckChallenge.
	// The challenge itself stays valid for the full TTL; only the immediate
	// lookup call is time-boxed.
	LookupTimeout time.Duration

	// ChallengeTTL is the validity window for newly issued challenges.
	ChallengeTTL time.Duration

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

// WithResolver configures the DNS TXT resolver.
func WithResolver(r TXTResolver) Option {
	return func(o *Options) error {
		if r == nil {
			return fmt.Errorf("resolver cannot be nil")
		}
		o.Resolver = r
		return nil
	}
}

// WithLookupTimeout configures the per-lookup DNS timeout.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("lookup timeout must be positive, got %v", timeout)
		}
		o.LookupTimeout = timeout
		return nil
	}
}

// WithChallengeTTL configures the validity window for new challenges.
func WithChallengeTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("challenge TTL must be positive, got %v", ttl)
		}
		o.ChallengeTTL = ttl
		return nil
	}
}

// WithClock configures the time source; used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Now = now
		return nil
	}
}

// DefaultLookupTimeout is the default bound on a single DNS TXT lookup.
func DefaultLookupTimeout() time.Duration {
	return 5 * time.Second
}

func defaultOptions() Options {
	return Options{
		Resolver:      DefaultResolver(),
		LookupTimeout: DefaultLookupTimeout(),
		ChallengeTTL:  domain.ChallengeTTL,
		Now:           time.Now,
	}
}
