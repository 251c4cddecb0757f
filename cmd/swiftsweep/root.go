// Command swiftsweep is the CLI entry point: scan for cleanup
// recommendations, execute them, inspect I/O trace hotspots, and query the
// audit log. Grounded on tim-coutinho-agentops/cli/cmd/ao's root-command
// layout (spf13/cobra, persistent flags, one file per subcommand, each
// self-registering via init()).
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ftahirops/swiftsweep/internal/applog"
	"github.com/ftahirops/swiftsweep/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagVerbose     bool
	flagJSON        bool
	flagMetricsAddr string
)

// ExitCodeError signals a non-zero process exit code without calling
// os.Exit directly, so RunE functions stay testable.
type ExitCodeError struct{ Code int }

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit %d", e.Code) }

var rootCmd = &cobra.Command{
	Use:   "swiftsweep",
	Short: "Disk hygiene recommendations and safe cleanup execution for macOS",
	Long: `swiftsweep scans a Mac for reclaimable disk space, produces evidence-backed
recommendations, and executes the ones you approve through a validated,
audited path.

Core Commands:
  scan    Build context and evaluate cleanup rules
  exec    Execute one or more recommendations' actions
  trace   Inspect self-tracing I/O hotspots
  audit   Query the executed-action audit log`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output machine-readable JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus-format metrics on this address while the command runs (e.g. :9090)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logger builds the shared structured logger for the invoked command.
func logger() *zap.SugaredLogger {
	return applog.Sugar(flagVerbose)
}

// loadConfig loads persisted settings. A home directory that can't be
// determined at all is the one unrecoverable configuration error this CLI
// can hit before doing any work (spec §6 exit code 1); a missing or corrupt
// config file is not one — config.Load already falls back to defaults.
func loadConfig(log *zap.SugaredLogger) (config.Config, error) {
	if config.Path() == "" {
		return config.Config{}, ExitCodeError{Code: 1}
	}
	return config.Load(log), nil
}
