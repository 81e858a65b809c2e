// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrProgramNotFound is returned when argv[0] cannot be resolved to an
// executable file.
var ErrProgramNotFound = errors.New("program not found")

// NativeRuntime executes the process directly via os/exec.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return "native"
}

// Available returns whether this runtime is available.
func (r *NativeRuntime) Available() bool {
	// Direct process spawning needs no external tooling.
	return true
}

// Validate checks if the execution context can be executed.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if len(ctx.Argv) == 0 {
		return fmt.Errorf("no program to execute")
	}
	if _, err := resolveProgram(ctx.Argv[0], ctx.Env); err != nil {
		return err
	}
	return nil
}

// Execute runs the process and streams its output.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	cmd, err := r.buildCmd(ctx)
	if err != nil {
		return NewErrorResult(1, err)
	}

	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("failed to execute %s: %w", ctx.Argv[0], err))
	}

	return NewSuccessResult()
}

// buildCmd constructs the exec.Cmd with the program resolved against the
// execution context's own PATH.
func (r *NativeRuntime) buildCmd(ctx *ExecutionContext) (*exec.Cmd, error) {
	if len(ctx.Argv) == 0 {
		return nil, fmt.Errorf("no program to execute")
	}

	prog, err := resolveProgram(ctx.Argv[0], ctx.Env)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx.Context, prog, ctx.Argv[1:]...)
	if ctx.Dir != "" {
		cmd.Dir = ctx.Dir
	}
	cmd.Env = EnvToSlice(ctx.Env)

	return cmd, nil
}

// resolveProgram locates the program to run. Names containing a path
// separator are used as-is; bare names are searched in the PATH entry of
// env rather than the host PATH, so a prepended environment directory
// shadows any system-wide installation of the same tool.
func resolveProgram(name string, env map[string]string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: '%s': %v", ErrProgramNotFound, name, err)
		}
		return name, nil
	}

	pathVal := env["PATH"]
	if pathVal == "" {
		pathVal = os.Getenv("PATH")
	}

	for _, dir := range filepath.SplitList(pathVal) {
		if dir == "" {
			continue
		}
		for _, candidate := range candidateNames(name) {
			full := filepath.Join(dir, candidate)
			info, err := os.Stat(full)
			if err != nil || info.IsDir() {
				continue
			}
			if isExecutable(info) {
				return full, nil
			}
		}
	}

	return "", fmt.Errorf("%w: '%s' is not in PATH", ErrProgramNotFound, name)
}

// candidateNames returns the file names to probe for a bare program name.
func candidateNames(name string) []string {
	if runtime.GOOS == "windows" && !strings.Contains(name, ".") {
		return []string{name + ".exe", name + ".bat", name + ".cmd", name}
	}
	return []string{name}
}

// isExecutable reports whether the file can plausibly be executed.
// Windows has no executable bit, so any regular file qualifies there.
func isExecutable(info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}
