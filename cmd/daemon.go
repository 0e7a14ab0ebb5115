package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/mcpdex/mcpdex/internal/cmd"
	"github.com/mcpdex/mcpdex/internal/config"
	"github.com/mcpdex/mcpdex/internal/daemon"
	"github.com/mcpdex/mcpdex/internal/discovery"
	"github.com/mcpdex/mcpdex/internal/flags"
	"github.com/mcpdex/mcpdex/internal/health"
	"github.com/mcpdex/mcpdex/internal/store"
	"github.com/mcpdex/mcpdex/internal/verify"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*internalcmd.BaseCmd
	Addr      string
	cfgLoader config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *internalcmd.BaseCmd) *cobra.Command {
	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--addr]",
		Short: "Launches an mcpdex daemon instance",
		Long:  "Launches an mcpdex daemon instance, serving the directory HTTP API and running periodic health probes",
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		"Address for the daemon to bind (overrides the config file)",
	)

	return cobraCommand
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework
// when the command is executed.
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = apiAddr(cfg)
	}

	s, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	verifier, err := verify.NewService(logger, s, verifyOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create verification service: %w", err)
	}

	engine, err := discovery.NewEngine(logger, s)
	if err != nil {
		return fmt.Errorf("failed to create discovery engine: %w", err)
	}

	monitor, err := health.NewMonitor(logger, s, healthOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create health monitor: %w", err)
	}

	deps, err := daemon.NewDependencies(logger, addr, verifier, engine, monitor)
	if err != nil {
		return fmt.Errorf("error configuring mcpdex daemon dependencies: %w", err)
	}

	d, err := daemon.NewDaemon(deps, daemonOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create mcpdex daemon instance: %w", err)
	}

	ctx := cobraCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return d.StartAndManage(ctx)
}

// apiAddr returns the configured bind address, or the default.
func apiAddr(cfg *config.Config) string {
	if cfg.API != nil && cfg.API.Addr != nil && strings.TrimSpace(*cfg.API.Addr) != "" {
		return strings.TrimSpace(*cfg.API.Addr)
	}
	return "0.0.0.0:8090"
}

// openStore opens the configured bbolt store, falling back to an in-memory
// store when no path is configured.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	var path string
	if cfg.Store != nil && cfg.Store.Path != nil {
		path = strings.TrimSpace(*cfg.Store.Path)
	}
	if path == "" {
		return store.NewMemory(), func() {}, nil
	}

	bolt, err := store.OpenBolt(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store at '%s': %w", path, err)
	}
	return bolt, func() { _ = bolt.Close() }, nil
}

func verifyOptions(cfg *config.Config) []verify.Option {
	if cfg.Verify == nil {
		return nil
	}

	var opts []verify.Option
	if cfg.Verify.LookupTimeout != nil {
		opts = append(opts, verify.WithLookupTimeout(cfg.Verify.LookupTimeout.Value(0)))
	}
	if cfg.Verify.ChallengeTTL != nil {
		opts = append(opts, verify.WithChallengeTTL(cfg.Verify.ChallengeTTL.Value(0)))
	}
	return opts
}

func healthOptions(cfg *config.Config) []health.Option {
	if cfg.Health == nil {
		return nil
	}

	var opts []health.Option
	if cfg.Health.ProbeTimeout != nil {
		opts = append(opts, health.WithProbeTimeout(cfg.Health.ProbeTimeout.Value(0)))
	}
	if cfg.Health.Concurrency != nil {
		opts = append(opts, health.WithConcurrency(*cfg.Health.Concurrency))
	}
	return opts
}

func daemonOptions(cfg *config.Config) []daemon.Option {
	var opts []daemon.Option

	if cfg.Health != nil && cfg.Health.Interval != nil {
		opts = append(opts, daemon.WithHealthCheckInterval(cfg.Health.Interval.Value(0)))
	}

	var apiOpts []daemon.APIOption
	if cfg.API != nil {
		if cfg.API.ShutdownTimeout != nil {
			apiOpts = append(apiOpts, daemon.WithShutdownTimeout(cfg.API.ShutdownTimeout.Value(0)))
		}
		if cors := cfg.API.CORS; cors != nil {
			if cors.Enable != nil {
				apiOpts = append(apiOpts, daemon.WithCORSEnabled(*cors.Enable))
			}
			if len(cors.Origins) > 0 {
				apiOpts = append(apiOpts, daemon.WithCORSAllowOrigins(cors.Origins))
			}
			if len(cors.Methods) > 0 {
				apiOpts = append(apiOpts, daemon.WithCORSAllowMethods(cors.Methods))
			}
			if len(cors.Headers) > 0 {
				apiOpts = append(apiOpts, daemon.WithCORSAllowHeaders(cors.Headers))
			}
			if len(cors.ExposeHeaders) > 0 {
				apiOpts = append(apiOpts, daemon.WithCORSExposeHeaders(cors.ExposeHeaders))
			}
			if cors.Credentials != nil {
				apiOpts = append(apiOpts, daemon.WithCORSAllowCredentials(*cors.Credentials))
			}
			if cors.MaxAge != nil {
				apiOpts = append(apiOpts, daemon.WithCORSMaxAge(cors.MaxAge.Value(0)))
			}
		}
	}
	if len(apiOpts) > 0 {
		opts = append(opts, daemon.WithAPIOptions(apiOpts...))
	}

	return opts
}
