// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"testing"

	"pytestci/internal/config"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestExtraArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		pytestArgs    string
		checkWarnings string
		coverage      string
		want          []string
	}{
		{
			name: "all empty",
			want: []string{},
		},
		{
			name:       "plain args split on whitespace",
			pytestArgs: "-v --maxfail=2",
			want:       []string{"-v", "--maxfail=2"},
		},
		{
			name:       "quoted argument stays one token",
			pytestArgs: `-k "not slow"`,
			want:       []string{"-k", "not slow"},
		},
		{
			name:          "warnings toggle appends escalation flags",
			checkWarnings: "true",
			want:          []string{"-Werror::DeprecationWarning", "-Werror::FutureWarning"},
		},
		{
			name:     "coverage toggle appends cov for the package",
			coverage: "true",
			want:     []string{"--cov", "sklearn"},
		},
		{
			name:          "both toggles preserve order warnings then coverage",
			pytestArgs:    "-x",
			checkWarnings: "true",
			coverage:      "true",
			want: []string{
				"-x",
				"-Werror::DeprecationWarning", "-Werror::FutureWarning",
				"--cov", "sklearn",
			},
		},
		{
			name:          "non-literal toggle values stay off",
			checkWarnings: "True",
			coverage:      "1",
			want:          []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.PytestArgs = tt.pytestArgs
			cfg.CheckWarnings = tt.checkWarnings
			cfg.Coverage = tt.coverage

			got, err := ExtraArgs(cfg)
			if err != nil {
				t.Fatalf("ExtraArgs() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ExtraArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildArgv(t *testing.T) {
	t.Parallel()

	t.Run("full command line", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.JUnitXML = "test-data.xml"
		cfg.PytestArgs = "-n 3"
		cfg.CheckWarnings = "true"
		cfg.Coverage = "true"

		got, err := BuildArgv(cfg)
		if err != nil {
			t.Fatalf("BuildArgv() failed: %v", err)
		}
		want := []string{
			"pytest",
			"--junitxml=test-data.xml",
			"--showlocals",
			"--durations=20",
			"-n", "3",
			"-Werror::DeprecationWarning", "-Werror::FutureWarning",
			"--cov", "sklearn",
			"--pyargs", "sklearn",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("BuildArgv() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("minimal configuration", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.ShowLocals = false
		cfg.Durations = 0

		got, err := BuildArgv(cfg)
		if err != nil {
			t.Fatalf("BuildArgv() failed: %v", err)
		}
		want := []string{"pytest", "--pyargs", "sklearn"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("BuildArgv() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("custom runner and package", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Runner.Executable = "py.test"
		cfg.Package = "mypkg"
		cfg.Coverage = "true"

		got, err := BuildArgv(cfg)
		if err != nil {
			t.Fatalf("BuildArgv() failed: %v", err)
		}
		if got[0] != "py.test" {
			t.Errorf("argv[0] = %q, want py.test", got[0])
		}
		if got[len(got)-1] != "mypkg" || got[len(got)-2] != "--pyargs" {
			t.Errorf("argv must end with --pyargs mypkg, got %v", got)
		}
		// Coverage follows the configured package, not the default.
		found := false
		for i, a := range got {
			if a == "--cov" && i+1 < len(got) && got[i+1] == "mypkg" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected --cov mypkg in %v", got)
		}
	})

	t.Run("unbalanced quote in pytest_args fails", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.PytestArgs = `-k "unterminated`

		if _, err := BuildArgv(cfg); err == nil {
			t.Error("expected an error for unbalanced quoting")
		}
	})
}
