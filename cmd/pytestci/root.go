// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pytestci.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"pytestci/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "pytestci",
		Short: "A cross-platform CI test step invoker",
		Long: TitleStyle.Render("pytestci") + SubtitleStyle.Render(" - A cross-platform CI test step invoker") + `

pytestci replaces per-platform CI test scripts with one tool: it activates
the configured Python environment, prepares a scratch directory, assembles
the pytest command line (structured report, warning escalation, coverage),
runs it, and propagates the runner's exit code to the pipeline.

Configuration comes from a CUE file overridden by the classic CI environment
variables (VIRTUALENV, TMP_FOLDER, CHECK_WARNINGS, COVERAGE, PYTEST_ARGS,
JUNITXML) and command-line flags.

` + SubtitleStyle.Render("Examples:") + `
  pytestci run                        Run the test step with current config
  pytestci run --dry-run              Show what would run without running it
  pytestci run --coverage true        Enable coverage collection
  pytestci config show                Show current configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pytestci/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newCompletionCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
