// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pytestci/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/pytestci/config.cue on macOS, %APPDATA%\pytestci\config.cue
// on Windows), then overridden by the CI environment variables (VIRTUALENV, TMP_FOLDER,
// CHECK_WARNINGS, COVERAGE, PYTEST_ARGS, JUNITXML) that pipeline definitions export, and
// finally by command-line flags.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
