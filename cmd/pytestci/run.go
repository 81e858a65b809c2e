// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pytestci/internal/config"
	"pytestci/internal/invoker"
	"pytestci/internal/issue"
	"pytestci/internal/runtime"
	"pytestci/internal/venv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// runFlags holds the flag values of `pytestci run`. Flags override both the
// config file and the CI environment variables, but only when actually set.
type runFlags struct {
	virtualenv    string
	tmpFolder     string
	checkWarnings string
	coverage      string
	pytestArgs    string
	junitXML      string
	pkg           string
	durations     int
	showLocals    bool
	summaryFile   string
	runner        string
	shell         string
	envFiles      []string
	dryRun        bool
}

// newRunCommand creates the `pytestci run` command.
func newRunCommand() *cobra.Command {
	flags := &runFlags{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured test step",
		Long: `Run the configured test step.

The run activates the configured Python environment, creates the scratch
directory, assembles the pytest command line, executes it, and lists the
scratch directory contents afterwards. The runner's exit code becomes
pytestci's exit code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestStep(cmd, flags)
		},
	}

	runCmd.Flags().StringVar(&flags.virtualenv, "virtualenv", "", "Python environment name or path to activate")
	runCmd.Flags().StringVar(&flags.tmpFolder, "tmp-folder", "", "scratch directory used as the working directory")
	runCmd.Flags().StringVar(&flags.checkWarnings, "check-warnings", "", "escalate deprecation/future warnings when exactly \"true\"")
	runCmd.Flags().StringVar(&flags.coverage, "coverage", "", "collect coverage when exactly \"true\"")
	runCmd.Flags().StringVar(&flags.pytestArgs, "pytest-args", "", "extra arguments passed to the runner")
	runCmd.Flags().StringVar(&flags.junitXML, "junitxml", "", "path of the structured XML report")
	runCmd.Flags().StringVar(&flags.pkg, "package", "", "installed package whose tests run")
	runCmd.Flags().IntVar(&flags.durations, "durations", 0, "slowest-N test report size (0 disables)")
	runCmd.Flags().BoolVar(&flags.showLocals, "show-locals", true, "show local variables in failure tracebacks")
	runCmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "write a TOML run summary to this path")
	runCmd.Flags().StringVar(&flags.runner, "runner", "", "runner executable name or path")
	runCmd.Flags().StringVar(&flags.shell, "shell", "", "execution runtime: native or virtual")
	runCmd.Flags().StringArrayVar(&flags.envFiles, "env-file", nil, "dotenv file merged into the run environment (suffix '?' marks it optional)")
	runCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the resolved run without executing it")

	return runCmd
}

func runTestStep(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := loadRunConfig(cmd, flags)
	if err != nil {
		rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	baseEnv := runtime.HostEnv()
	for _, envFile := range flags.envFiles {
		if err := runtime.LoadEnvFile(baseEnv, envFile, ""); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if flags.dryRun {
		return renderDryRun(cmd.OutOrStdout(), cfg, baseEnv)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "pytestci"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	inv := invoker.New(cfg,
		invoker.WithLogger(logger),
		invoker.WithBaseEnv(baseEnv),
		invoker.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)

	report, err := inv.Run(cmd.Context())
	if err != nil {
		renderRunIssue(err)
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	if report.ExitCode != 0 {
		if rendered, renderErr := issue.Get(issue.TestRunFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return &ExitError{Code: report.ExitCode}
	}

	if cfg.JUnitXML != "" && report.Report == nil {
		// The run passed but nobody will see its results.
		if rendered, renderErr := issue.Get(issue.ReportMissingId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}

	return nil
}

// loadRunConfig loads the configuration and applies flag overrides. A flag
// wins only when it was set on the command line, so an unset flag never
// clobbers a value coming from the environment or the config file.
func loadRunConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, _, err := config.LoadWithSource(cmd.Context(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("virtualenv") {
		cfg.Virtualenv = flags.virtualenv
	}
	if set("tmp-folder") {
		cfg.TmpFolder = flags.tmpFolder
	}
	if set("check-warnings") {
		cfg.CheckWarnings = flags.checkWarnings
	}
	if set("coverage") {
		cfg.Coverage = flags.coverage
	}
	if set("pytest-args") {
		cfg.PytestArgs = flags.pytestArgs
	}
	if set("junitxml") {
		cfg.JUnitXML = flags.junitXML
	}
	if set("package") {
		cfg.Package = flags.pkg
	}
	if set("durations") {
		cfg.Durations = flags.durations
	}
	if set("show-locals") {
		cfg.ShowLocals = flags.showLocals
	}
	if set("summary-file") {
		cfg.SummaryFile = flags.summaryFile
	}
	if set("runner") {
		cfg.Runner.Executable = flags.runner
	}
	if set("shell") {
		cfg.Runner.Shell = config.ShellMode(flags.shell)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// classifyRunError maps run failures to issue catalog IDs. The second return
// is false when no catalog entry applies and no card should be shown.
func classifyRunError(err error) (issue.Id, bool) {
	var pathErr *fs.PathError

	switch {
	case errors.Is(err, venv.ErrEnvironmentNotFound):
		return issue.EnvironmentNotFoundId, true
	case errors.Is(err, runtime.ErrProgramNotFound):
		return issue.RunnerNotFoundId, true
	case errors.As(err, &pathErr) && pathErr.Op == "mkdir":
		return issue.ScratchDirCreateFailedId, true
	}
	return 0, false
}

// renderRunIssue prints the issue card matching a failed run when one applies.
func renderRunIssue(err error) {
	id, ok := classifyRunError(err)
	if !ok {
		return
	}
	if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}
