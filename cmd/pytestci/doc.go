// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pytestci.
//
// This package implements the Cobra command hierarchy for the pytestci CLI:
// the root command, the run command that performs a test invocation, and the
// configuration management subcommands.
package cmd
