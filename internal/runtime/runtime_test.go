// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"testing"
)

type stubRuntime struct {
	name      string
	available bool
	validate  error
	result    *Result
	executed  bool
}

func (s *stubRuntime) Name() string                        { return s.name }
func (s *stubRuntime) Available() bool                     { return s.available }
func (s *stubRuntime) Validate(_ *ExecutionContext) error  { return s.validate }
func (s *stubRuntime) Execute(_ *ExecutionContext) *Result { s.executed = true; return s.result }

func TestNewRegistryHasBuiltins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	for _, typ := range []Type{TypeNative, TypeVirtual} {
		rt, err := reg.Get(typ)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", typ, err)
		}
		if rt.Name() != string(typ) {
			t.Errorf("Get(%s).Name() = %q", typ, rt.Name())
		}
	}

	if got := len(reg.Available()); got != 2 {
		t.Errorf("Available() returned %d runtimes, want 2", got)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, err := reg.Get("container"); err == nil {
		t.Error("expected an error for an unregistered runtime")
	}
}

func TestRegistryExecute(t *testing.T) {
	t.Parallel()

	t.Run("dispatches to the runtime", func(t *testing.T) {
		t.Parallel()

		stub := &stubRuntime{name: "stub", available: true, result: NewExitCodeResult(4)}
		reg := &Registry{runtimes: map[Type]Runtime{"stub": stub}}

		result := reg.Execute("stub", NewExecutionContext(context.Background(), []string{"x"}))
		if !stub.executed {
			t.Error("expected the runtime to be executed")
		}
		if result.ExitCode != 4 {
			t.Errorf("exit code = %d, want 4", result.ExitCode)
		}
	})

	t.Run("unavailable runtime", func(t *testing.T) {
		t.Parallel()

		stub := &stubRuntime{name: "stub", available: false}
		reg := &Registry{runtimes: map[Type]Runtime{"stub": stub}}

		result := reg.Execute("stub", NewExecutionContext(context.Background(), []string{"x"}))
		if result.Error == nil || stub.executed {
			t.Error("expected an error result without execution")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("bad context")
		stub := &stubRuntime{name: "stub", available: true, validate: wantErr}
		reg := &Registry{runtimes: map[Type]Runtime{"stub": stub}}

		result := reg.Execute("stub", NewExecutionContext(context.Background(), []string{"x"}))
		if !errors.Is(result.Error, wantErr) || stub.executed {
			t.Errorf("expected validation error, got %v (executed=%v)", result.Error, stub.executed)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry()
		result := reg.Execute("nope", NewExecutionContext(context.Background(), []string{"x"}))
		if result.Error == nil {
			t.Error("expected an error result for an unknown runtime type")
		}
	})
}

func TestNewExecutionContextDefaults(t *testing.T) {
	t.Parallel()

	ectx := NewExecutionContext(nil, []string{"prog", "arg"}) //nolint:staticcheck // nil context is the point
	if ectx.Context == nil {
		t.Error("expected a non-nil context")
	}
	if ectx.Env == nil {
		t.Error("expected a non-nil env map")
	}
	if len(ectx.Argv) != 2 {
		t.Errorf("argv = %v", ectx.Argv)
	}
	if ectx.Stdout == nil || ectx.Stderr == nil || ectx.Stdin == nil {
		t.Error("expected stdio defaults")
	}
}

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	if !(NewSuccessResult()).Success() {
		t.Error("zero exit with nil error must be success")
	}
	if (NewExitCodeResult(1)).Success() {
		t.Error("non-zero exit must not be success")
	}
	if (NewErrorResult(0, errors.New("x"))).Success() {
		t.Error("an error result must not be success")
	}
}
