// Package config loads daemon configuration from a TOML file. All sections
// and fields are optional; absent values fall back to package defaults at the
// point of use.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root of the TOML configuration file.
type Config struct {
	// API configuration (address and nested timeout/cors).
	API *APIConfigSection `toml:"api,omitempty"`

	// Store configuration (persistence path).
	Store *StoreConfigSection `toml:"store,omitempty"`

	// Health configuration (probe cycle settings).
	Health *HealthConfigSection `toml:"health,omitempty"`

	// Verify configuration (DNS challenge settings).
	Verify *VerifyConfigSection `toml:"verify,omitempty"`
}

// APIConfigSection contains API server configuration settings.
type APIConfigSection struct {
	// Address to bind the API server (e.g. "0.0.0.0:8090").
	Addr *string `toml:"addr,omitempty"`

	// Shutdown timeout for graceful API server shutdown.
	ShutdownTimeout *Duration `toml:"shutdown_timeout,omitempty"`

	// Nested CORS configuration for cross-origin requests.
	CORS *CORSConfigSection `toml:"cors,omitempty"`
}

// CORSConfigSection contains Cross-Origin Resource Sharing configuration.
type CORSConfigSection struct {
	Enable        *bool     `toml:"enable,omitempty"`
	Origins       []string  `toml:"allow_origins,omitempty"`
	Methods       []string  `toml:"allow_methods,omitempty"`
	Headers       []string  `toml:"allow_headers,omitempty"`
	ExposeHeaders []string  `toml:"expose_headers,omitempty"`
	Credentials   *bool     `toml:"allow_credentials,omitempty"`
	MaxAge        *Duration `toml:"max_age,omitempty"`
}

// StoreConfigSection configures record persistence.
type StoreConfigSection struct {
	// Path to the bbolt database file. Empty means an in-memory store,
	// which loses all registrations on restart.
	Path *string `toml:"path,omitempty"`
}

// HealthConfigSection configures the background probe cycle.
type HealthConfigSection struct {
	// Interval between probe cycles.
	Interval *Duration `toml:"interval,omitempty"`

	// Per-probe timeout.
	ProbeTimeout *Duration `toml:"probe_timeout,omitempty"`

	// Maximum number of concurrent probes.
	Concurrency *int64 `toml:"concurrency,omitempty"`
}

// VerifyConfigSection configures DNS challenge handling.
type VerifyConfigSection struct {
	// Timeout for a single TXT record lookup.
	LookupTimeout *Duration `toml:"lookup_timeout,omitempty"`

	// How long a challenge stays redeemable after issuance.
	ChallengeTTL *Duration `toml:"challenge_ttl,omitempty"`
}

// Duration is a time.Duration that marshals to and from TOML strings like "5m".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(*d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// Value returns the wrapped time.Duration, or fallback when the pointer is nil.
func (d *Duration) Value(fallback time.Duration) time.Duration {
	if d == nil {
		return fallback
	}
	return time.Duration(*d)
}

// Loader loads configuration from a file path.
type Loader interface {
	Load(path string) (*Config, error)
}

// DefaultLoader loads TOML configuration from disk.
type DefaultLoader struct{}

// Load reads the config file at path. A missing file is not an error; the
// daemon runs on defaults.
func (l *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to stat config file (%s): %w", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config from file (%s): %w", path, err)
	}

	return cfg, nil
}
