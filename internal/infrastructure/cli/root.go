// Package cli wires the command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "specforge",
	Version: Version,
	Short:   "Turn written specifications into deployed web applications",
	Long: `SpecForge runs an asynchronous pipeline that turns a written
specification into a deployed web application:
1. Analyze the spec into structured features, models and components
2. Generate a runnable Next.js project
3. Deploy the result and stream progress events along the way`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
