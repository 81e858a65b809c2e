// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"pytestci/internal/runtime"
)

func TestExitErrorMessage(t *testing.T) {
	t.Parallel()

	bare := &ExitError{Code: runtime.ExitCode(3)}
	if got := bare.Error(); got != "exit status 3" {
		t.Errorf("Error() = %q, want %q", got, "exit status 3")
	}

	wrapped := &ExitError{Code: runtime.ExitCode(1), Err: errors.New("runner blew up")}
	if got := wrapped.Error(); got != "runner blew up" {
		t.Errorf("Error() = %q, want %q", got, "runner blew up")
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	err := fmt.Errorf("outer: %w", &ExitError{Code: 1, Err: inner})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatal("errors.As() failed to find ExitError")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is() failed to reach the wrapped error")
	}
}
