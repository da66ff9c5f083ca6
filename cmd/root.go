// Package cmd implements Logly's command-line surface: one cobra root
// command plus the subcommands in spec.md §6's table, grounded on
// xtop's cmd/root.go flag-and-dispatch shape but rebuilt on
// github.com/spf13/cobra the way the wider examples corpus
// (e.g. DataDog-datadog-agent's cmd/trace-agent tree) structures a
// multi-subcommand CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logly/logly/config"
)

// ExitCodeError carries a process exit code out of a command's RunE,
// the way xtop's cmd/doctor.go signaled a non-zero exit without a
// panic or direct os.Exit call inside business logic.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

var configPath string

// Execute runs the root command and returns the process exit code.
// Per spec.md §6: 0 on success, 1 on any uncaught error (printed to
// stderr).
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if exitErr, ok := err.(*ExitCodeError); ok {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, "logly:", exitErr.Err)
			}
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "logly:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "logly",
		Short: "Single-host observability daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML")

	root.AddCommand(
		newStartCmd(),
		newCollectCmd(),
		newStatusCmd(),
		newDBSizeCmd(),
		newExportCmd(),
		newReportCmd(),
		newQueryCmd(),
		newWatchCmd(),
	)
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, &ExitCodeError{Code: 1, Err: fmt.Errorf("load config: %w", err)}
	}
	return cfg, nil
}
