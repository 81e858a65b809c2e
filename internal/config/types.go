// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pytestci/internal/platform"
)

const (
	// ShellNative runs the assembled command directly via os/exec.
	ShellNative ShellMode = "native"
	// ShellVirtual runs the assembled command through the embedded mvdan/sh interpreter.
	ShellVirtual ShellMode = "virtual"

	// enabledLiteral is the only value that switches the CHECK_WARNINGS and
	// COVERAGE toggles on. Anything else, including unset, leaves them off.
	enabledLiteral = "true"
)

var (
	// ErrInvalidShellMode is returned when a ShellMode value is not recognized.
	ErrInvalidShellMode = errors.New("invalid shell mode")
	// ErrInvalidDurations is returned when the durations value is negative.
	ErrInvalidDurations = errors.New("invalid durations value")
	// ErrMissingPackage is returned when the package under test is empty.
	ErrMissingPackage = errors.New("missing package name")
	// ErrReservedPathName is returned when an output path uses a name that is
	// reserved on Windows, where CI artifacts commonly end up.
	ErrReservedPathName = errors.New("reserved path name")
)

type (
	// ShellMode selects the execution runtime for the test runner process.
	ShellMode string

	// InvalidShellModeError is returned when a ShellMode value is not recognized.
	// It wraps ErrInvalidShellMode for errors.Is() compatibility.
	InvalidShellModeError struct {
		Value ShellMode
	}

	// RunnerConfig configures the test runner process.
	RunnerConfig struct {
		// Executable is the runner program name or path (default "pytest").
		Executable string `json:"executable" toml:"executable" mapstructure:"executable"`
		// Shell selects how the runner process is spawned.
		Shell ShellMode `json:"shell" toml:"shell" mapstructure:"shell"`
	}

	// UIConfig holds output-related settings.
	UIConfig struct {
		// Verbose enables verbose diagnostic output.
		Verbose bool `json:"verbose" toml:"verbose" mapstructure:"verbose"`
	}

	// Config is the explicit configuration for one test invocation. The CI
	// environment variables listed per field remain the outer interface; the
	// struct is how every other package sees them.
	Config struct {
		// Virtualenv is the name or path of the isolated Python environment
		// to activate. Env: VIRTUALENV. Activation failure is fatal.
		Virtualenv string `json:"virtualenv" toml:"virtualenv" mapstructure:"virtualenv"`

		// TmpFolder is the scratch directory, created if absent and used as
		// the working directory of the test run. Env: TMP_FOLDER.
		TmpFolder string `json:"tmp_folder" toml:"tmp_folder" mapstructure:"tmp_folder"`

		// CheckWarnings escalates deprecation and future warnings to errors
		// when it equals the literal "true". Env: CHECK_WARNINGS.
		CheckWarnings string `json:"check_warnings" toml:"check_warnings" mapstructure:"check_warnings"`

		// Coverage enables coverage collection for Package when it equals
		// the literal "true". Env: COVERAGE.
		Coverage string `json:"coverage" toml:"coverage" mapstructure:"coverage"`

		// PytestArgs holds pre-existing extra runner arguments, extended by
		// the two toggles above. Env: PYTEST_ARGS.
		PytestArgs string `json:"pytest_args" toml:"pytest_args" mapstructure:"pytest_args"`

		// JUnitXML is the output path of the structured XML report.
		// Env: JUNITXML.
		JUnitXML string `json:"junitxml" toml:"junitxml" mapstructure:"junitxml"`

		// Package is the installed package whose tests run (--pyargs) and
		// whose coverage is collected (--cov).
		Package string `json:"package" toml:"package" mapstructure:"package"`

		// Durations is the slowest-N test report size. Zero disables it.
		Durations int `json:"durations" toml:"durations" mapstructure:"durations"`

		// ShowLocals shows local variables in failure tracebacks.
		ShowLocals bool `json:"show_locals" toml:"show_locals" mapstructure:"show_locals"`

		// SummaryFile, when set, receives a TOML summary of the run.
		SummaryFile string `json:"summary_file" toml:"summary_file" mapstructure:"summary_file"`

		// Runner configures the test runner process.
		Runner RunnerConfig `json:"runner" toml:"runner" mapstructure:"runner"`

		// UI holds output-related settings.
		UI UIConfig `json:"ui" toml:"ui" mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidShellModeError) Error() string {
	return fmt.Sprintf("invalid shell mode '%s' (must be 'native' or 'virtual')", e.Value)
}

// Unwrap returns ErrInvalidShellMode so callers can use errors.Is.
func (e *InvalidShellModeError) Unwrap() error { return ErrInvalidShellMode }

// IsValid returns whether the ShellMode is recognized, and a list of
// validation errors if it is not.
func (m ShellMode) IsValid() (bool, []error) {
	switch m {
	case ShellNative, ShellVirtual:
		return true, nil
	}
	return false, []error{&InvalidShellModeError{Value: m}}
}

// CheckWarningsEnabled reports whether warning escalation is on. Only the
// exact literal "true" enables it; this mirrors the string comparison the
// original pipeline scripts performed.
func (c *Config) CheckWarningsEnabled() bool {
	return c.CheckWarnings == enabledLiteral
}

// CoverageEnabled reports whether coverage collection is on. Same exact
// literal semantics as CheckWarningsEnabled.
func (c *Config) CoverageEnabled() bool {
	return c.Coverage == enabledLiteral
}

// Validate checks constraints the CUE schema cannot see because env and flag
// overrides are merged after schema validation.
func (c *Config) Validate() error {
	if ok, errs := c.Runner.Shell.IsValid(); !ok {
		return errs[0]
	}
	if c.Durations < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidDurations, c.Durations)
	}
	if strings.TrimSpace(c.Package) == "" {
		return ErrMissingPackage
	}
	for _, p := range []string{c.TmpFolder, c.JUnitXML, c.SummaryFile} {
		if p == "" {
			continue
		}
		if base := filepath.Base(p); platform.IsWindowsReservedName(base) {
			return fmt.Errorf("%w: '%s'", ErrReservedPathName, base)
		}
	}
	return nil
}

// DefaultConfig returns the built-in defaults. The toggles default to unset,
// which keeps both disabled until the pipeline opts in.
func DefaultConfig() *Config {
	return &Config{
		Package:    "sklearn",
		Durations:  20,
		ShowLocals: true,
		Runner: RunnerConfig{
			Executable: "pytest",
			Shell:      ShellNative,
		},
	}
}
