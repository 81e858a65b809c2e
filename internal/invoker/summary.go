// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// RunSummary is the machine-readable record of one completed run, written
// as TOML when a summary file is configured.
type RunSummary struct {
	// ExitCode is the runner's exit code.
	ExitCode int `toml:"exit_code"`
	// DurationSeconds is the wall time of the runner process.
	DurationSeconds float64 `toml:"duration_seconds"`
	// Argv is the full command line that was executed.
	Argv []string `toml:"argv"`
	// WorkDir is the directory the runner executed in.
	WorkDir string `toml:"work_dir,omitempty"`
	// Virtualenv is the root of the activated environment, if any.
	Virtualenv string `toml:"virtualenv,omitempty"`
	// JUnitXML is the path of the structured report, if one was requested.
	JUnitXML string `toml:"junitxml,omitempty"`
	// StartedAt is when the runner process started.
	StartedAt time.Time `toml:"started_at"`
	// Report holds the parsed report counters when the report was readable.
	Report *TestSummary `toml:"report,omitempty"`
}

// WriteSummaryFile marshals the summary as TOML to path.
func WriteSummaryFile(path string, summary *RunSummary) error {
	data, err := toml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cannot marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write run summary '%s': %w", path, err)
	}
	return nil
}
