// Package cli implements the gsdtool commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rmera/gogsd/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Human   bool
}

// NewRootCommand creates the root command for gsdtool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gsdtool",
		Short: "Inspect, convert and produce GSD trajectories",
		Long: `gsdtool works with the chunked trajectory files written by gogsd.

It prints what a file holds, exports the positions to STF or DCD, plots the
box volume, truncates files to zero frames and writes test trajectories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(opts.Verbose, opts.Human)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every chunk written")
	cmd.PersistentFlags().BoolVar(&opts.Human, "human", false, "human readable logs instead of JSON")

	cmd.AddCommand(NewInfoCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewPlotCommand())
	cmd.AddCommand(NewTruncateCommand())
	cmd.AddCommand(NewLatticeCommand())

	return cmd
}

// Run executes gsdtool with args.
func Run(args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
