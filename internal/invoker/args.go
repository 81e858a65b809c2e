// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"fmt"

	"pytestci/internal/config"
	"pytestci/internal/runtime"
)

// Warning escalation flags appended when the CHECK_WARNINGS toggle is on.
// Deprecation and future warnings become test failures.
var warningFlags = []string{
	"-Werror::DeprecationWarning",
	"-Werror::FutureWarning",
}

// ExtraArgs computes the effective extra runner arguments: the configured
// pytest_args string split into tokens, extended by the warning escalation
// and coverage flags when their toggles are on.
func ExtraArgs(cfg *config.Config) ([]string, error) {
	args, err := runtime.SplitArgs(cfg.PytestArgs)
	if err != nil {
		return nil, fmt.Errorf("cannot parse pytest_args %q: %w", cfg.PytestArgs, err)
	}

	if cfg.CheckWarningsEnabled() {
		args = append(args, warningFlags...)
	}
	if cfg.CoverageEnabled() {
		args = append(args, "--cov", cfg.Package)
	}

	return args, nil
}

// BuildArgv assembles the full runner command line. Fixed reporting flags
// come first, then the extra arguments, and the package selector last:
//
//	pytest --junitxml=<path> --showlocals --durations=<n> <extra...> --pyargs <package>
//
// A later argument wins for pytest flags given twice, so extras placed after
// the fixed flags can override them.
func BuildArgv(cfg *config.Config) ([]string, error) {
	extra, err := ExtraArgs(cfg)
	if err != nil {
		return nil, err
	}

	argv := []string{cfg.Runner.Executable}
	if cfg.JUnitXML != "" {
		argv = append(argv, "--junitxml="+cfg.JUnitXML)
	}
	if cfg.ShowLocals {
		argv = append(argv, "--showlocals")
	}
	if cfg.Durations > 0 {
		argv = append(argv, fmt.Sprintf("--durations=%d", cfg.Durations))
	}
	argv = append(argv, extra...)
	argv = append(argv, "--pyargs", cfg.Package)

	return argv, nil
}
