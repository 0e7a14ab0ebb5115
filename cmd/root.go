// Package cmd wires the mcpdex CLI.
package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	internalcmd "github.com/mcpdex/mcpdex/internal/cmd"
	"github.com/mcpdex/mcpdex/internal/flags"
)

type RootCmd struct {
	*internalcmd.BaseCmd
}

func Execute() error {
	rootCmd := NewRootCmd(nil)
	return rootCmd.Execute()
}

func NewRootCmd(logger hclog.Logger) *cobra.Command {
	c := &RootCmd{
		BaseCmd: &internalcmd.BaseCmd{},
	}
	if logger != nil {
		c.SetLogger(logger)
	}

	rootCmd := &cobra.Command{
		Use:          "mcpdex <command> [args]",
		Short:        "'mcpdex' runs the MCP server directory service.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      internalcmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewDaemonCmd(c.BaseCmd))

	return rootCmd
}

func (c *RootCmd) longDescription() string {
	return `The 'mcpdex' CLI runs the MCP server directory: agents discover MCP
endpoints by domain, capability or intent, and operators register servers by
proving domain ownership through DNS TXT challenges.`
}
