// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Package != "sklearn" {
		t.Errorf("expected default package to be sklearn, got %s", cfg.Package)
	}

	if cfg.Durations != 20 {
		t.Errorf("expected default durations to be 20, got %d", cfg.Durations)
	}

	if !cfg.ShowLocals {
		t.Error("expected show_locals to be true by default")
	}

	if cfg.Runner.Executable != "pytest" {
		t.Errorf("expected default runner executable to be pytest, got %s", cfg.Runner.Executable)
	}

	if cfg.Runner.Shell != ShellNative {
		t.Errorf("expected default shell mode to be native, got %s", cfg.Runner.Shell)
	}

	if cfg.Virtualenv != "" {
		t.Errorf("expected default virtualenv to be empty, got %q", cfg.Virtualenv)
	}

	if cfg.CheckWarningsEnabled() {
		t.Error("expected warning escalation to be off by default")
	}

	if cfg.CoverageEnabled() {
		t.Error("expected coverage to be off by default")
	}

	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
}

func TestToggleLiteralSemantics(t *testing.T) {
	t.Parallel()

	// Only the exact literal "true" switches a toggle on.
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"", false},
		{"false", false},
		{"TRUE", false},
		{"True", false},
		{"1", false},
		{"yes", false},
		{" true", false},
		{"true ", false},
		{`"true"`, false},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.CheckWarnings = tt.value
			cfg.Coverage = tt.value

			if got := cfg.CheckWarningsEnabled(); got != tt.want {
				t.Errorf("CheckWarningsEnabled() with %q = %v, want %v", tt.value, got, tt.want)
			}
			if got := cfg.CoverageEnabled(); got != tt.want {
				t.Errorf("CoverageEnabled() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestShellModeIsValid(t *testing.T) {
	t.Parallel()

	for _, mode := range []ShellMode{ShellNative, ShellVirtual} {
		if ok, errs := mode.IsValid(); !ok {
			t.Errorf("expected %s to be valid, got errors: %v", mode, errs)
		}
	}

	ok, errs := ShellMode("powershell").IsValid()
	if ok {
		t.Fatal("expected powershell to be invalid")
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(errs))
	}
	if !errors.Is(errs[0], ErrInvalidShellMode) {
		t.Errorf("expected error to wrap ErrInvalidShellMode, got %v", errs[0])
	}

	var modeErr *InvalidShellModeError
	if !errors.As(errs[0], &modeErr) {
		t.Fatalf("expected *InvalidShellModeError, got %T", errs[0])
	}
	if modeErr.Value != "powershell" {
		t.Errorf("expected error value powershell, got %s", modeErr.Value)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()

		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("invalid shell mode", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Runner.Shell = "cmd"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidShellMode) {
			t.Errorf("expected ErrInvalidShellMode, got %v", err)
		}
	})

	t.Run("negative durations", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Durations = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidDurations) {
			t.Errorf("expected ErrInvalidDurations, got %v", err)
		}
	})

	t.Run("zero durations is allowed", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Durations = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected zero durations to validate, got %v", err)
		}
	})

	t.Run("missing package", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Package = "   "
		if err := cfg.Validate(); !errors.Is(err, ErrMissingPackage) {
			t.Errorf("expected ErrMissingPackage, got %v", err)
		}
	})

	t.Run("reserved output path name", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.JUnitXML = "artifacts/CON.xml"
		if err := cfg.Validate(); !errors.Is(err, ErrReservedPathName) {
			t.Errorf("expected ErrReservedPathName, got %v", err)
		}
	})

	t.Run("reserved scratch dir name", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.TmpFolder = "C:/tmp/NUL"
		if err := cfg.Validate(); !errors.Is(err, ErrReservedPathName) {
			t.Errorf("expected ErrReservedPathName, got %v", err)
		}
	})
}
