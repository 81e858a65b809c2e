// SPDX-License-Identifier: MPL-2.0

// Package runtime provides process execution runtimes for pytestci.
//
// Two implementations exist: NativeRuntime spawns the process directly via
// os/exec, and VirtualRuntime runs the command line through the embedded
// mvdan/sh interpreter for CI images that ship without a usable shell.
package runtime
