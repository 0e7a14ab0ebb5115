package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpdex/mcpdex/internal/contracts"
)

// Dependencies contains all required dependencies for creating a Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Addr is the network address the API server binds to.
	Addr string

	// Verifier drives registration and the DNS challenge lifecycle.
	Verifier contracts.DomainVerifier

	// Searcher resolves discovery queries.
	Searcher contracts.ServerSearcher

	// Monitor reports health and runs the scheduled probe cycle.
	Monitor contracts.HealthMonitor

	// Logger for daemon operations.
	Logger hclog.Logger
}

// NewDependencies creates validated dependencies for a Daemon.
func NewDependencies(
	logger hclog.Logger,
	addr string,
	verifier contracts.DomainVerifier,
	searcher contracts.ServerSearcher,
	monitor contracts.HealthMonitor,
) (Dependencies, error) {
	deps := Dependencies{
		Addr:     addr,
		Verifier: verifier,
		Searcher: searcher,
		Monitor:  monitor,
		Logger:   logger,
	}
	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are present.
func (d Dependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Verifier == nil || reflect.ValueOf(d.Verifier).IsNil() {
		return fmt.Errorf("verifier cannot be nil")
	}
	if d.Searcher == nil || reflect.ValueOf(d.Searcher).IsNil() {
		return fmt.Errorf("searcher cannot be nil")
	}
	if d.Monitor == nil || reflect.ValueOf(d.Monitor).IsNil() {
		return fmt.Errorf("monitor cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	return nil
}
