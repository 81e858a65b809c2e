// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"pytestci/internal/config"
	"pytestci/internal/invoker"
	"pytestci/internal/venv"
)

// renderDryRun prints the resolved run without executing it: the command
// line, the runtime, the scratch directory, and the environment activation
// overlay — everything a user needs to understand what pytestci would do.
func renderDryRun(w io.Writer, cfg *config.Config, baseEnv map[string]string) error {
	argv, err := invoker.BuildArgv(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Runner:"), cfg.Runner.Executable)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Shell:"), string(cfg.Runner.Shell))

	if cfg.TmpFolder != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("WorkDir:"), cfg.TmpFolder)
	}

	// Environment activation is resolved for real so a broken VIRTUALENV
	// value surfaces here instead of at run time.
	if cfg.Virtualenv != "" {
		pyEnv, err := venv.Resolve(cfg.Virtualenv)
		if err != nil {
			fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Environment:"),
				ErrorStyle.Render(fmt.Sprintf("unresolvable (%v)", err)))
		} else {
			fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Environment:"), pyEnv.Root)
			fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Interpreter:"), pyEnv.Python())
			fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("PATH prefix:"),
				strings.Join(pyEnv.PathDirs(), ", "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Command:"))
	fmt.Fprintf(w, "    %s\n", CmdStyle.Render(strings.Join(argv, " ")))

	// The toggles deserve an explicit echo since their semantics are
	// exact-literal comparison, not boolean parsing.
	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Toggles:"))
	fmt.Fprintf(w, "    check_warnings: %v (value %q)\n", cfg.CheckWarningsEnabled(), cfg.CheckWarnings)
	fmt.Fprintf(w, "    coverage:       %v (value %q)\n", cfg.CoverageEnabled(), cfg.Coverage)

	if cfg.JUnitXML != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Report:"), cfg.JUnitXML)
	}

	// CI variables present in the base environment, for override debugging.
	ciVars := []string{"VIRTUALENV", "TMP_FOLDER", "CHECK_WARNINGS", "COVERAGE", "PYTEST_ARGS", "JUNITXML"}
	present := make([]string, 0, len(ciVars))
	for _, name := range ciVars {
		if value, ok := baseEnv[name]; ok {
			present = append(present, fmt.Sprintf("%s=%s", name, value))
		}
	}
	if len(present) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, VerboseHighlightStyle.Render("  Environment overrides:"))
		for _, kv := range present {
			fmt.Fprintf(w, "    %s\n", kv)
		}
	}

	fmt.Fprintln(w)
	return nil
}
