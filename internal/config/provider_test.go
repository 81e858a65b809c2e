// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProviderLoad(t *testing.T) {
	cfgDir := t.TempDir()
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cuePath, []byte(`virtualenv: "provider-env"`), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	p := NewProvider()
	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Virtualenv != "provider-env" {
		t.Errorf("virtualenv = %q, want provider-env", cfg.Virtualenv)
	}
}

func TestProviderLoadDefaults(t *testing.T) {
	p := NewProvider()
	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Runner.Executable != "pytest" {
		t.Errorf("runner.executable = %q, want pytest", cfg.Runner.Executable)
	}
}

func TestLoadWithSourceReportsFile(t *testing.T) {
	cfgDir := t.TempDir()
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cuePath, []byte(`coverage: "true"`), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, src, err := LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if src != cuePath {
		t.Errorf("source = %q, want %q", src, cuePath)
	}
}
