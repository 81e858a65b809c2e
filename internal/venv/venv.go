// SPDX-License-Identifier: MPL-2.0

// Package venv resolves and activates isolated Python environments.
//
// Activation never sources a shell script: it computes the environment
// variable overlay that activation scripts would produce (PATH prepend,
// VIRTUAL_ENV, cleared PYTHONHOME) so the result is identical on every
// platform and inside every runtime.
package venv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	rt "pytestci/internal/runtime"
)

// ErrEnvironmentNotFound is the sentinel error wrapped by NotFoundError.
var ErrEnvironmentNotFound = errors.New("environment not found")

type (
	// Environment is a resolved isolated Python environment.
	Environment struct {
		// Name is the value the environment was resolved from (a bare name
		// or a filesystem path).
		Name string
		// Root is the absolute path of the environment directory.
		Root string
	}

	// NotFoundError is returned when an environment cannot be resolved to
	// an existing directory containing a Python interpreter.
	NotFoundError struct {
		// Value is the name or path that failed to resolve.
		Value string
		// Searched lists the locations that were probed.
		Searched []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("environment '%s' not found", e.Value)
	}
	return fmt.Sprintf("environment '%s' not found (searched: %s)",
		e.Value, strings.Join(e.Searched, ", "))
}

// Unwrap returns ErrEnvironmentNotFound so callers can use errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrEnvironmentNotFound }

// Resolve locates the environment identified by value. A value containing a
// path separator (or matching an existing directory) is treated as the
// environment root directly; a bare name is searched under the conventional
// conda and virtualenvwrapper homes.
func Resolve(value string) (*Environment, error) {
	if value == "" {
		return nil, &NotFoundError{Value: value}
	}

	if strings.ContainsAny(value, `/\`) || dirExists(value) {
		root, err := filepath.Abs(value)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve environment path '%s': %w", value, err)
		}
		env := &Environment{Name: value, Root: root}
		if err := env.Validate(); err != nil {
			return nil, err
		}
		return env, nil
	}

	searched := make([]string, 0, 4)
	for _, home := range envHomes() {
		candidate := filepath.Join(home, value)
		searched = append(searched, candidate)
		env := &Environment{Name: value, Root: candidate}
		if env.Validate() == nil {
			return env, nil
		}
	}

	return nil, &NotFoundError{Value: value, Searched: searched}
}

// Validate checks that the environment root exists and contains a Python
// interpreter.
func (e *Environment) Validate() error {
	if !dirExists(e.Root) {
		return &NotFoundError{Value: e.Name, Searched: []string{e.Root}}
	}
	if e.Python() == "" {
		return fmt.Errorf("directory '%s' is not a Python environment: no interpreter found", e.Root)
	}
	return nil
}

// Python returns the path of the environment's interpreter, or "" when none
// exists. Conda on Windows places python.exe at the root; virtualenv uses
// Scripts\python.exe there and bin/python elsewhere.
func (e *Environment) Python() string {
	var candidates []string
	if runtime.GOOS == "windows" {
		candidates = []string{
			filepath.Join(e.Root, "python.exe"),
			filepath.Join(e.Root, "Scripts", "python.exe"),
		}
	} else {
		candidates = []string{
			filepath.Join(e.Root, "bin", "python"),
			filepath.Join(e.Root, "bin", "python3"),
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// PathDirs returns the directories the activated environment prepends to
// PATH, most specific first.
func (e *Environment) PathDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			e.Root,
			filepath.Join(e.Root, "Scripts"),
			filepath.Join(e.Root, "Library", "bin"),
		}
	}
	return []string{filepath.Join(e.Root, "bin")}
}

// Activate returns a copy of base with the environment's activation overlay
// applied: the environment's script directories lead PATH, VIRTUAL_ENV points
// at the root, and PYTHONHOME is cleared so the interpreter cannot pick up a
// stray system installation.
func (e *Environment) Activate(base map[string]string) map[string]string {
	overlay := map[string]string{"VIRTUAL_ENV": e.Root}

	prefix := strings.Join(e.PathDirs(), string(os.PathListSeparator))
	if existing := base["PATH"]; existing != "" {
		overlay["PATH"] = prefix + string(os.PathListSeparator) + existing
	} else {
		overlay["PATH"] = prefix
	}

	env := rt.MergeEnv(base, overlay)
	delete(env, "PYTHONHOME")

	return env
}

// envHomes returns the directories searched for a bare environment name.
func envHomes() []string {
	var homes []string

	if prefix := os.Getenv("CONDA_PREFIX"); prefix != "" {
		// When a base env is active, its sibling envs live under envs/.
		homes = append(homes, filepath.Join(prefix, "envs"))
	}
	if workon := os.Getenv("WORKON_HOME"); workon != "" {
		homes = append(homes, workon)
	}

	if home, err := os.UserHomeDir(); err == nil {
		homes = append(homes,
			filepath.Join(home, ".conda", "envs"),
			filepath.Join(home, ".virtualenvs"),
		)
	}

	return homes
}

// dirExists checks if path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
