// Package cmd wires the gomsv command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for gomsv
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gomsv",
		Short: "Find the minimum supported Go toolchain version of a project",
		Long: `gomsv determines the oldest Go toolchain version a project still builds
with, by installing candidate toolchains and running a validation command
under each one.

The search bisects the release list by default, assuming that once a version
works every newer version works too. Pass --linear for an exhaustive
ascending scan when that assumption does not hold for a project.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: <project>/.gomsv.yaml)")
	flags.String("path", ".", "Path to the project containing go.mod")
	flags.String("output", "", "Output format: human or json")
	flags.String("index-url", "", "Override the release index URL")
	flags.String("store-dir", "", "Directory for toolchain shims and install locks")
	flags.String("log-level", "", "Run log level: trace, debug, info, warn, error")
	flags.String("log-dir", "", "Directory for run logs")
	flags.Bool("no-log", false, "Disable the run log")
	flags.Bool("no-history", false, "Do not record this run in the history database")

	// Add subcommands
	cmd.AddCommand(NewFindCommand())
	cmd.AddCommand(NewVerifyCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
