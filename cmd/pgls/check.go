package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/logging"
	"github.com/pgls/pgls/workspace"
)

var errDiagnosticsFound = errors.New("diagnostics found at or above the configured level")

var checkCmd = &cobra.Command{
	Use:   "check file.sql [file.sql...]",
	Short: "Run the lint rule set over one or more SQL files and report diagnostics",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		return usageError(errors.New("need at least one file argument"))
	}

	log := logging.Default()
	w := workspace.New(workspace.ServerInfo{Name: "pgls", Version: "dev"})

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return usageError(fmt.Errorf("reading config %s: %w", configPath, err))
		}
		if err := w.UpdateSettings(raw); err != nil {
			return usageError(fmt.Errorf("parsing config %s: %w", configPath, err))
		}
	}

	var foundAny bool
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return usageError(fmt.Errorf("reading %s: %w", path, err))
		}

		if err := w.OpenFile(path, string(raw), 1); err != nil {
			var wErr *workspace.Error
			if errors.As(err, &wErr) && wErr.Category == workspace.FileIgnored {
				log.Info("skipping ignored file", "path", path)
				continue
			}
			return internalError(fmt.Errorf("opening %s: %w", path, err))
		}

		diags, err := w.PullDiagnostics(path, nil, nil, nil)
		if err != nil {
			return internalError(fmt.Errorf("analyzing %s: %w", path, err))
		}
		for _, d := range diags {
			printDiagnostic(cmd, path, d)
			if d.Severity <= diag.SeverityWarning {
				foundAny = true
			}
		}
	}

	if foundAny {
		return diagnosticsFoundError()
	}
	return nil
}

func printDiagnostic(cmd *cobra.Command, path string, d diag.Diagnostic) {
	loc := path
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d", path, d.Span.Start)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s [%s]\n", loc, d.Severity, d.Message, d.Category)
}
