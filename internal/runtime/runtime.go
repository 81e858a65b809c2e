// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Runtime type constants for the supported execution environments.
const (
	TypeNative  Type = "native"
	TypeVirtual Type = "virtual"
)

type (
	// Type identifies a runtime implementation.
	Type string

	// ExecutionContext contains everything needed to run one process.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Argv is the program name followed by its arguments. The program
		// is resolved against the PATH entry of Env, not the host PATH,
		// so an activated environment's interpreter wins.
		Argv []string
		// Dir is the working directory for the process.
		Dir string
		// Env is the complete environment for the process ("KEY" -> value).
		Env map[string]string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
	}

	// Result contains the outcome of a process execution. The process output
	// is not part of it: stdout and stderr stream to the writers of the
	// ExecutionContext, which in CI is the pipeline log.
	Result struct {
		// ExitCode is the exit code of the process.
		ExitCode ExitCode
		// Error contains any infrastructure error that occurred. A non-zero
		// ExitCode from a process that ran to completion leaves Error nil.
		Error error
	}

	// Runtime defines the interface for process execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Execute runs the process described by the execution context.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is usable on the current system.
		Available() bool
		// Validate checks whether the execution context can be executed.
		Validate(ctx *ExecutionContext) error
	}

	// Registry holds the available runtimes.
	Registry struct {
		runtimes map[Type]Runtime
	}
)

// NewExecutionContext creates an execution context with stdio defaults.
func NewExecutionContext(ctx context.Context, argv []string) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Context: ctx,
		Argv:    argv,
		Env:     make(map[string]string),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
	}
}

// Success returns true if the process executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewRegistry creates a registry with both built-in runtimes registered.
func NewRegistry() *Registry {
	reg := &Registry{runtimes: make(map[Type]Runtime)}
	reg.Register(TypeNative, NewNativeRuntime())
	reg.Register(TypeVirtual, NewVirtualRuntime())
	return reg
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ Type, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ Type) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", typ)
	}
	return rt, nil
}

// Available returns the types of all usable runtimes.
func (r *Registry) Available() []Type {
	var types []Type
	for typ, rt := range r.runtimes {
		if rt.Available() {
			types = append(types, typ)
		}
	}
	return types
}

// Execute runs the execution context with the requested runtime after
// availability and validation checks.
func (r *Registry) Execute(typ Type, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(1, err)
	}

	if !rt.Available() {
		return NewErrorResult(1, fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	return rt.Execute(ctx)
}
