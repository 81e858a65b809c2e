// SPDX-License-Identifier: MPL-2.0

// Package invoker orchestrates one test run: it activates the configured
// Python environment, prepares the scratch directory, assembles the runner
// command line, executes it through the selected runtime, and reports the
// outcome (directory listing, parsed XML report, optional TOML summary).
//
// The runner's exit code is preserved end to end so the surrounding pipeline
// sees exactly what the test process returned.
package invoker
