package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpdex/mcpdex/internal/contracts"
)

// APIDependencies contains all required dependencies for creating an APIServer.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr is the network address the API server binds to.
	Addr string

	// Verifier drives registration and the DNS challenge lifecycle.
	Verifier contracts.DomainVerifier

	// Searcher resolves discovery queries.
	Searcher contracts.ServerSearcher

	// Health reports per-domain health and trust.
	Health contracts.HealthReader

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates validated dependencies for an API server.
func NewAPIDependencies(
	logger hclog.Logger,
	addr string,
	verifier contracts.DomainVerifier,
	searcher contracts.ServerSearcher,
	healthReader contracts.HealthReader,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:     addr,
		Verifier: verifier,
		Searcher: searcher,
		Health:   healthReader,
		Logger:   logger,
	}
	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are present.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Verifier == nil || reflect.ValueOf(d.Verifier).IsNil() {
		return fmt.Errorf("verifier cannot be nil")
	}
	if d.Searcher == nil || reflect.ValueOf(d.Searcher).IsNil() {
		return fmt.Errorf("searcher cannot be nil")
	}
	if d.Health == nil || reflect.ValueOf(d.Health).IsNil() {
		return fmt.Errorf("health reader cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	return nil
}
