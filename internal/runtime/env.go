// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// EnvToSlice converts a map of environment variables to "KEY=VALUE" form.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}

// EnvFromSlice converts "KEY=VALUE" entries to a map. Malformed entries
// without a separator are dropped.
func EnvFromSlice(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, e := range environ {
		key, value, found := strings.Cut(e, "=")
		if !found || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// HostEnv returns the host environment as a map.
func HostEnv() map[string]string {
	return EnvFromSlice(os.Environ())
}

// MergeEnv returns base with overlay applied. Neither input is mutated.
func MergeEnv(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	maps.Copy(merged, base)
	maps.Copy(merged, overlay)
	return merged
}

// SplitArgs splits a flat argument string into words using shell field
// splitting rules, so quoted arguments such as -k "not slow" survive intact.
// Variable references inside the string are not expanded.
func SplitArgs(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	fields, err := shell.Fields(s, func(name string) string {
		// No expansion: keep $VARS literal so the value passed by the CI
		// system reaches the runner untouched.
		return "$" + name
	})
	if err != nil {
		return nil, fmt.Errorf("cannot split arguments %q: %w", s, err)
	}
	return fields, nil
}
