// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes the process through the embedded mvdan/sh
// interpreter. External programs are still spawned as real processes, but no
// system shell is involved, which keeps behavior identical across platforms.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Available returns whether this runtime is available.
func (r *VirtualRuntime) Available() bool {
	// The interpreter is built in.
	return true
}

// Validate checks if the execution context can be executed.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if len(ctx.Argv) == 0 {
		return fmt.Errorf("no program to execute")
	}
	if _, err := quoteArgv(ctx.Argv); err != nil {
		return err
	}
	return nil
}

// Execute runs the process and streams its output.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	script, err := quoteArgv(ctx.Argv)
	if err != nil {
		return NewErrorResult(1, err)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "command")
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse command: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(ctx.Env)...)),
		interp.StdIO(ctx.Stdin, ctx.Stdout, ctx.Stderr),
	}
	if ctx.Dir != "" {
		opts = append(opts, interp.Dir(ctx.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	if err := runner.Run(execCtx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(ExitCode(exitStatus))
		}
		return NewErrorResult(1, fmt.Errorf("command execution failed: %w", err))
	}

	return NewSuccessResult()
}

// quoteArgv renders argv as a single shell command line, quoting each word so
// the interpreter performs no expansion of its own.
func quoteArgv(argv []string) (string, error) {
	words := make([]string, 0, len(argv))
	for _, arg := range argv {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " "), nil
}
