// Command pgls is a thin CLI wrapper over the Workspace exposing the check
// subcommand's exit-code contract (spec §6): full LSP transport and broader
// CLI argument surface remain out of scope.
package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "pgls",
		Short:        "pgls",
		SilenceUsage: true,
		Long:         `Postgres-dialect SQL language server analysis core, driven from the command line.`,
	}

	configPath string
)

// execute runs the root command. Callers should translate a returned
// *ExitError's Code into os.Exit; any other error is an unexpected internal
// failure (exit 70).
func execute() error {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to postgrestools.jsonc")
	return rootCmd.Execute()
}
