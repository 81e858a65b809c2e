// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"pytestci/internal/cueutil"
	"pytestci/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "pytestci"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// envBindings maps viper keys to the CI environment variables that override
// them. The names are the exact, historical ones pipeline definitions export.
var envBindings = map[string]string{
	"virtualenv":     "VIRTUALENV",
	"tmp_folder":     "TMP_FOLDER",
	"check_warnings": "CHECK_WARNINGS",
	"coverage":       "COVERAGE",
	"pytest_args":    "PYTEST_ARGS",
	"junitxml":       "JUNITXML",
}

// ConfigDir returns the pytestci configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("virtualenv", defaults.Virtualenv)
	v.SetDefault("tmp_folder", defaults.TmpFolder)
	v.SetDefault("check_warnings", defaults.CheckWarnings)
	v.SetDefault("coverage", defaults.Coverage)
	v.SetDefault("pytest_args", defaults.PytestArgs)
	v.SetDefault("junitxml", defaults.JUnitXML)
	v.SetDefault("package", defaults.Package)
	v.SetDefault("durations", defaults.Durations)
	v.SetDefault("show_locals", defaults.ShowLocals)
	v.SetDefault("summary_file", defaults.SummaryFile)
	v.SetDefault("runner.executable", defaults.Runner.Executable)
	v.SetDefault("runner.shell", string(defaults.Runner.Shell))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	// If a custom config file path is set via --config flag, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'pytestci config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'pytestci config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		// Try the user config file, then one in the current directory.
		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if !fileExists(cuePath) {
			cuePath = ConfigFileName + "." + ConfigFileExt
		}
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(cuePath).
					WithSuggestion("Check that the file contains valid CUE syntax").
					WithSuggestion("Verify the configuration values match the expected schema").
					WithSuggestion("See 'pytestci config --help' for configuration options").
					Wrap(err).
					BuildError()
			}
			resolvedPath = cuePath
		}
		// If no config file found, use defaults (no error)
	}

	// CI environment variables override file values.
	for key, envName := range envBindings {
		if err := v.BindEnv(key, envName); err != nil {
			return nil, "", fmt.Errorf("failed to bind env var %s: %w", envName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate constraints CUE cannot check once env overrides are merged.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check the environment variable and flag overrides for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The config decodes to a map rather than
// a struct so the file contents layer under env vars and flags inside Viper.
// Concrete(false) because every config field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig creates a default config file if it doesn't exist
func CreateDefaultConfig() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return nil // File exists
	}

	defaults := DefaultConfig()
	cueContent := GenerateCUE(defaults)

	if err := os.WriteFile(cfgPath, []byte(cueContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	cueContent := GenerateCUE(cfg)

	if err := os.WriteFile(cfgPath, []byte(cueContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pytestci configuration file.\n")
	sb.WriteString("// Values here are overridden by the CI environment variables\n")
	sb.WriteString("// (VIRTUALENV, TMP_FOLDER, CHECK_WARNINGS, COVERAGE, PYTEST_ARGS, JUNITXML)\n")
	sb.WriteString("// and by command-line flags.\n\n")

	if cfg.Virtualenv != "" {
		sb.WriteString(fmt.Sprintf("virtualenv: %q\n", cfg.Virtualenv))
	}
	if cfg.TmpFolder != "" {
		sb.WriteString(fmt.Sprintf("tmp_folder: %q\n", cfg.TmpFolder))
	}
	if cfg.CheckWarnings != "" {
		sb.WriteString(fmt.Sprintf("check_warnings: %q\n", cfg.CheckWarnings))
	}
	if cfg.Coverage != "" {
		sb.WriteString(fmt.Sprintf("coverage: %q\n", cfg.Coverage))
	}
	if cfg.PytestArgs != "" {
		sb.WriteString(fmt.Sprintf("pytest_args: %q\n", cfg.PytestArgs))
	}
	if cfg.JUnitXML != "" {
		sb.WriteString(fmt.Sprintf("junitxml: %q\n", cfg.JUnitXML))
	}

	sb.WriteString(fmt.Sprintf("package: %q\n", cfg.Package))
	sb.WriteString(fmt.Sprintf("durations: %d\n", cfg.Durations))
	sb.WriteString(fmt.Sprintf("show_locals: %v\n", cfg.ShowLocals))
	if cfg.SummaryFile != "" {
		sb.WriteString(fmt.Sprintf("summary_file: %q\n", cfg.SummaryFile))
	}

	sb.WriteString("\nrunner: {\n")
	sb.WriteString(fmt.Sprintf("\texecutable: %q\n", cfg.Runner.Executable))
	sb.WriteString(fmt.Sprintf("\tshell: %q\n", cfg.Runner.Shell))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", cfg.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}
