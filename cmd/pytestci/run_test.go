// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"pytestci/internal/config"
	"pytestci/internal/issue"
	"pytestci/internal/runtime"
	"pytestci/internal/testutil"
	"pytestci/internal/venv"
)

// isolateConfig points the config loader at an empty directory and clears the
// CI environment variables so tests see only defaults plus their own inputs.
func isolateConfig(t *testing.T) {
	t.Helper()

	config.SetConfigDirOverride(t.TempDir())
	t.Cleanup(config.Reset)
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))

	for _, key := range []string{"VIRTUALENV", "TMP_FOLDER", "CHECK_WARNINGS", "COVERAGE", "PYTEST_ARGS", "JUNITXML"} {
		t.Cleanup(testutil.MustUnsetenv(t, key))
	}
}

func executeRun(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRunCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRunDryRunDefaults(t *testing.T) {
	isolateConfig(t)

	out, err := executeRun(t, "--dry-run")
	if err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}

	for _, token := range []string{
		"Dry Run",
		"pytest",
		"--showlocals",
		"--durations=20",
		"--pyargs sklearn",
		"native",
	} {
		if !strings.Contains(out, token) {
			t.Errorf("output missing %q:\n%s", token, out)
		}
	}
}

func TestRunDryRunFlagOverrides(t *testing.T) {
	isolateConfig(t)

	out, err := executeRun(t, "--dry-run",
		"--package", "numpy",
		"--check-warnings", "true",
		"--junitxml", "out.xml",
	)
	if err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}

	for _, token := range []string{
		"--pyargs numpy",
		"-Werror::DeprecationWarning",
		"-Werror::FutureWarning",
		"--junitxml=out.xml",
		`check_warnings: true (value "true")`,
	} {
		if !strings.Contains(out, token) {
			t.Errorf("output missing %q:\n%s", token, out)
		}
	}
}

func TestRunDryRunEnvOverride(t *testing.T) {
	isolateConfig(t)
	t.Cleanup(testutil.MustSetenv(t, "PYTEST_ARGS", "-n 4"))

	out, err := executeRun(t, "--dry-run")
	if err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}

	if !strings.Contains(out, "-n 4") {
		t.Errorf("command line missing env-provided args:\n%s", out)
	}
	if !strings.Contains(out, "PYTEST_ARGS=-n 4") {
		t.Errorf("environment overrides section missing PYTEST_ARGS:\n%s", out)
	}
}

func TestRunDryRunFlagBeatsEnv(t *testing.T) {
	isolateConfig(t)
	t.Cleanup(testutil.MustSetenv(t, "COVERAGE", "true"))

	out, err := executeRun(t, "--dry-run", "--coverage", "false")
	if err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}

	if strings.Contains(out, "--cov") {
		t.Errorf("coverage flag should be off when the flag overrides the env var:\n%s", out)
	}
	if !strings.Contains(out, `(value "false")`) {
		t.Errorf("toggle echo missing overridden value:\n%s", out)
	}
}

func TestRunInvalidShellFlag(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t, "--dry-run", "--shell", "cmd")
	if !errors.Is(err, config.ErrInvalidShellMode) {
		t.Errorf("expected ErrInvalidShellMode, got %v", err)
	}
}

func TestRunReservedReportPath(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t, "--dry-run", "--junitxml", "NUL.xml")
	if !errors.Is(err, config.ErrReservedPathName) {
		t.Errorf("expected ErrReservedPathName, got %v", err)
	}
}

func TestClassifyRunError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		wantId issue.Id
		wantOk bool
	}{
		{
			name:   "environment not found",
			err:    &venv.NotFoundError{Value: "myenv"},
			wantId: issue.EnvironmentNotFoundId,
			wantOk: true,
		},
		{
			name: "environment not found wrapped in actionable error",
			err: issue.WrapWithOperation(
				&venv.NotFoundError{Value: "myenv"}, "activate environment"),
			wantId: issue.EnvironmentNotFoundId,
			wantOk: true,
		},
		{
			name:   "runner not found",
			err:    runtime.ErrProgramNotFound,
			wantId: issue.RunnerNotFoundId,
			wantOk: true,
		},
		{
			name:   "scratch dir creation failed",
			err:    &fs.PathError{Op: "mkdir", Path: "/tmp/x", Err: fs.ErrPermission},
			wantId: issue.ScratchDirCreateFailedId,
			wantOk: true,
		},
		{
			name:   "non-mkdir path error",
			err:    &fs.PathError{Op: "open", Path: "/tmp/x", Err: fs.ErrNotExist},
			wantOk: false,
		},
		{
			name:   "unrelated error",
			err:    errors.New("boom"),
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, ok := classifyRunError(tt.err)
			if ok != tt.wantOk {
				t.Fatalf("classifyRunError() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && id != tt.wantId {
				t.Errorf("classifyRunError() id = %v, want %v", id, tt.wantId)
			}
		})
	}
}
