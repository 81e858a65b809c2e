// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func TestWriteSummaryFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.toml")
	written := &RunSummary{
		ExitCode:        1,
		DurationSeconds: 42.5,
		Argv:            []string{"pytest", "--pyargs", "sklearn"},
		WorkDir:         "/tmp/scratch",
		Virtualenv:      "/envs/testvenv",
		JUnitXML:        "test-data.xml",
		StartedAt:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Report: &TestSummary{
			Tests:    10,
			Failures: 1,
		},
	}

	if err := WriteSummaryFile(path, written); err != nil {
		t.Fatalf("WriteSummaryFile() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}

	var loaded RunSummary
	if err := toml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("summary is not valid TOML: %v", err)
	}

	if loaded.ExitCode != 1 {
		t.Errorf("exit_code = %d, want 1", loaded.ExitCode)
	}
	if loaded.DurationSeconds != 42.5 {
		t.Errorf("duration_seconds = %v, want 42.5", loaded.DurationSeconds)
	}
	if len(loaded.Argv) != 3 || loaded.Argv[0] != "pytest" {
		t.Errorf("argv = %v, want pytest command line", loaded.Argv)
	}
	if loaded.Report == nil || loaded.Report.Tests != 10 || loaded.Report.Failures != 1 {
		t.Errorf("report = %+v, want 10 tests and 1 failure", loaded.Report)
	}
	if !loaded.StartedAt.Equal(written.StartedAt) {
		t.Errorf("started_at = %v, want %v", loaded.StartedAt, written.StartedAt)
	}
}

func TestWriteSummaryFileOmitsEmptyOptionals(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.toml")
	if err := WriteSummaryFile(path, &RunSummary{Argv: []string{"pytest"}}); err != nil {
		t.Fatalf("WriteSummaryFile() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	for _, absent := range []string{"work_dir", "virtualenv", "junitxml", "[report]"} {
		if strings.Contains(string(data), absent) {
			t.Errorf("expected %q to be omitted, got:\n%s", absent, data)
		}
	}
}
