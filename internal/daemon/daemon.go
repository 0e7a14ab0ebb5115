// Package daemon wires the directory services together and runs the HTTP API
// alongside the scheduled health probe cycle.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpdex/mcpdex/internal/contracts"
)

// Daemon runs the directory: the HTTP API plus the background health loop.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger              hclog.Logger
	apiServer           *APIServer
	monitor             contracts.HealthMonitor
	healthCheckInterval time.Duration
}

// NewDaemon creates a daemon from validated dependencies and options.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for daemon: %w", err)
	}

	options, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	apiDeps, err := NewAPIDependencies(deps.Logger, deps.Addr, deps.Verifier, deps.Searcher, deps.Monitor)
	if err != nil {
		return nil, err
	}
	apiServer, err := NewAPIServer(apiDeps, options.API...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		logger:              deps.Logger.Named("daemon"),
		apiServer:           apiServer,
		monitor:             deps.Monitor,
		healthCheckInterval: options.HealthCheckInterval,
	}, nil
}

// StartAndManage runs the API server and the health loop until the context is
// canceled or the process receives an interrupt/termination signal.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go d.healthCheckLoop(ctx)

	// Start blocks; shutdown is driven by context cancellation.
	if err := d.apiServer.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("API server failed: %w", err)
	}

	return nil
}

// healthCheckLoop probes all verified servers once immediately, then on every
// tick until the context is canceled.
func (d *Daemon) healthCheckLoop(ctx context.Context) {
	ticker := time.NewTicker(d.healthCheckInterval)
	defer ticker.Stop()

	d.runProbeCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping health checks")
			return
		case <-ticker.C:
			d.runProbeCycle(ctx)
		}
	}
}

func (d *Daemon) runProbeCycle(ctx context.Context) {
	if err := d.monitor.RunOnce(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("Health probe cycle failed", "error", err)
	}
}
