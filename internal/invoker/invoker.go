// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"pytestci/internal/config"
	"pytestci/internal/issue"
	"pytestci/internal/runtime"
	"pytestci/internal/testutil"
	"pytestci/internal/venv"

	"github.com/charmbracelet/log"
)

type (
	// Invoker runs one configured test invocation.
	Invoker struct {
		cfg      *config.Config
		registry *runtime.Registry
		logger   *log.Logger
		clock    testutil.Clock
		baseEnv  map[string]string
		stdout   io.Writer
		stderr   io.Writer
		stdin    io.Reader
	}

	// Option customizes an Invoker.
	Option func(*Invoker)

	// RunReport is the outcome of one invocation. It is returned even when
	// the test process fails, so callers can propagate the exit code after
	// inspecting the rest.
	RunReport struct {
		// ExitCode is the runner's exit code, preserved verbatim.
		ExitCode runtime.ExitCode
		// Argv is the command line that was executed.
		Argv []string
		// WorkDir is the directory the runner executed in ("" means the
		// invoker's own working directory).
		WorkDir string
		// Environment is the activated Python environment, or nil.
		Environment *venv.Environment
		// Duration is the wall time of the runner process.
		Duration time.Duration
		// Listing holds the scratch directory contents after the run.
		Listing []ListEntry
		// Report holds the parsed XML report counters, when readable.
		Report *TestSummary
	}
)

// WithRegistry sets the runtime registry.
func WithRegistry(reg *runtime.Registry) Option {
	return func(inv *Invoker) { inv.registry = reg }
}

// WithLogger sets the step logger.
func WithLogger(logger *log.Logger) Option {
	return func(inv *Invoker) { inv.logger = logger }
}

// WithBaseEnv sets the environment the run starts from instead of the host
// environment. Activation overlays are applied on top of it.
func WithBaseEnv(env map[string]string) Option {
	return func(inv *Invoker) { inv.baseEnv = env }
}

// WithStdio redirects the runner's standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(inv *Invoker) {
		inv.stdin = stdin
		inv.stdout = stdout
		inv.stderr = stderr
	}
}

// WithClock sets the clock used for run timing.
func WithClock(clock testutil.Clock) Option {
	return func(inv *Invoker) { inv.clock = clock }
}

// New creates an Invoker for cfg.
func New(cfg *config.Config, opts ...Option) *Invoker {
	inv := &Invoker{
		cfg:      cfg,
		registry: runtime.NewRegistry(),
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "pytestci"}),
		clock:    testutil.RealClock{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Run performs the invocation. A non-nil error means the run could not be
// carried out (environment missing, scratch directory not creatable, runner
// not found); a failing test process is NOT an error, it is a RunReport with
// a non-zero ExitCode.
func (inv *Invoker) Run(ctx context.Context) (*RunReport, error) {
	argv, err := BuildArgv(inv.cfg)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("assemble runner command").
			Wrap(err).
			BuildError()
	}

	env := inv.baseEnv
	if env == nil {
		env = runtime.HostEnv()
	}

	report := &RunReport{Argv: argv}

	// Environment activation comes first: everything after it, including
	// program resolution, must see the activated PATH. Failure is fatal.
	if inv.cfg.Virtualenv != "" {
		pyEnv, err := venv.Resolve(inv.cfg.Virtualenv)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("activate environment").
				WithResource(inv.cfg.Virtualenv).
				WithSuggestion("Check that the environment name or path is correct").
				WithSuggestion("Create the environment before running the tests").
				WithSuggestion("Run 'pytestci run --dry-run' to inspect the resolved configuration").
				Wrap(err).
				BuildError()
		}
		env = pyEnv.Activate(env)
		report.Environment = pyEnv
		inv.logger.Info("activated environment", "name", pyEnv.Name, "root", pyEnv.Root)
	}

	if inv.cfg.TmpFolder != "" {
		// MkdirAll keeps reruns into a warm scratch directory working.
		if err := os.MkdirAll(inv.cfg.TmpFolder, 0o755); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("create scratch directory").
				WithResource(inv.cfg.TmpFolder).
				WithSuggestion("Check that the parent directory is writable").
				WithSuggestion("Check that the path does not collide with an existing file").
				Wrap(err).
				BuildError()
		}
		report.WorkDir = inv.cfg.TmpFolder
		inv.logger.Info("scratch directory ready", "path", inv.cfg.TmpFolder)
	}

	ectx := runtime.NewExecutionContext(ctx, argv)
	ectx.Env = env
	ectx.Dir = report.WorkDir
	ectx.Stdout = inv.stdout
	ectx.Stderr = inv.stderr
	ectx.Stdin = inv.stdin

	inv.logger.Info("running tests", "argv", argv, "shell", inv.cfg.Runner.Shell)

	start := inv.clock.Now()
	result := inv.registry.Execute(runtimeType(inv.cfg.Runner.Shell), ectx)
	report.Duration = inv.clock.Since(start)
	report.ExitCode = result.ExitCode

	if result.Error != nil {
		// The runner never produced an exit status of its own.
		return nil, issue.NewErrorContext().
			WithOperation("run tests").
			WithResource(inv.cfg.Runner.Executable).
			WithSuggestion("Check that the runner is installed in the active environment").
			WithSuggestion("Check the runner.executable configuration value").
			Wrap(result.Error).
			BuildError()
	}

	inv.logger.Info("test run finished", "exit_code", result.ExitCode, "duration", report.Duration)

	// Post-run steps never change the exit code. The listing runs whether
	// the tests passed or failed.
	inv.finishRun(report)

	return report, nil
}

// finishRun performs the non-fatal post-run steps: the scratch directory
// listing, report parsing, and the optional summary file.
func (inv *Invoker) finishRun(report *RunReport) {
	if report.WorkDir != "" {
		entries, err := ListDir(report.WorkDir)
		if err != nil {
			inv.logger.Warn("cannot list scratch directory", "path", report.WorkDir, "err", err)
		} else {
			report.Listing = entries
			WriteListing(inv.stdout, report.WorkDir, entries)
		}
	}

	if inv.cfg.JUnitXML != "" {
		reportPath := inv.resolvePath(report.WorkDir, inv.cfg.JUnitXML)
		summary, err := ParseJUnitFile(reportPath)
		if err != nil {
			inv.logger.Warn("cannot read test report", "path", reportPath, "err", err)
		} else {
			report.Report = summary
			inv.logger.Info("test report",
				"tests", summary.Tests,
				"failures", summary.Failures,
				"errors", summary.Errors,
				"skipped", summary.Skipped)
		}
	}

	if inv.cfg.SummaryFile != "" {
		summaryPath := inv.resolvePath(report.WorkDir, inv.cfg.SummaryFile)
		summary := &RunSummary{
			ExitCode:        int(report.ExitCode),
			DurationSeconds: report.Duration.Seconds(),
			Argv:            report.Argv,
			WorkDir:         report.WorkDir,
			JUnitXML:        inv.cfg.JUnitXML,
			StartedAt:       inv.clock.Now().Add(-report.Duration),
			Report:          report.Report,
		}
		if report.Environment != nil {
			summary.Virtualenv = report.Environment.Root
		}
		if err := WriteSummaryFile(summaryPath, summary); err != nil {
			inv.logger.Warn("cannot write run summary", "path", summaryPath, "err", err)
		}
	}
}

// resolvePath anchors a relative path at the runner's working directory, the
// same place the runner itself would create it.
func (inv *Invoker) resolvePath(workDir, path string) string {
	if workDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// runtimeType maps the configured shell mode onto a runtime type.
func runtimeType(mode config.ShellMode) runtime.Type {
	if mode == config.ShellVirtual {
		return runtime.TypeVirtual
	}
	return runtime.TypeNative
}
