package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/swagger2doc/internal/config"
	genspec "github.com/mark3labs/swagger2doc/internal/spec"
)

func captureConfig(t *testing.T) **config.Config {
	t.Helper()
	var captured *config.Config
	tablesRunner = func(ctx context.Context, cfg *config.Config) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { tablesRunner = runTables })
	return &captured
}

func TestTablesConfigFromFlags(t *testing.T) {
	captured := captureConfig(t)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"--verbose",
		"tables",
		"--input", "spec.yaml",
		"--out", "./build",
		"--format", "YAML",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--methods", "GET,post",
		"--sample-primitive-arrays",
		"--http-timeout", "3s",
		"--max-retries", "5",
		"--dry-run",
		"--force",
		"extra.json",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}

	if want := []string{"spec.yaml", "extra.json"}; !equalStringSlices(cfg.Input, want) {
		t.Errorf("input mismatch: got %v", cfg.Input)
	}
	if cfg.Out != "./build" {
		t.Errorf("out mismatch: got %q", cfg.Out)
	}
	if cfg.Format != "yaml" {
		t.Errorf("format mismatch: got %q", cfg.Format)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", cfg.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", cfg.ExcludeTags)
	}
	if want := []string{"get", "post"}; !equalStringSlices(cfg.Methods, want) {
		t.Errorf("methods mismatch: got %v", cfg.Methods)
	}
	if !cfg.SamplePrimitiveArrays {
		t.Errorf("expected sample-primitive-arrays true")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("http timeout mismatch: got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("max retries mismatch: got %d", cfg.MaxRetries)
	}
	if !cfg.DryRun || !cfg.Force || !cfg.Verbose {
		t.Errorf("expected dry-run, force and verbose true: %+v", cfg)
	}
}

func TestTablesConfigPrecedence(t *testing.T) {
	captured := captureConfig(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
format: yaml
includeTags:
  - cfgFoo
exclude_tags: cfgBar
dry-run: true
verbose: true
http-timeout: 30s
`) + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"--config", configPath,
		"tables",
		"--out", "from-flag",
		"--dry-run=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}

	if want := []string{"config-spec.yaml"}; !equalStringSlices(cfg.Input, want) {
		t.Errorf("input mismatch: got %v", cfg.Input)
	}
	if cfg.Out != "from-flag" {
		t.Errorf("expected flag to override out, got %q", cfg.Out)
	}
	if cfg.Format != "yaml" {
		t.Errorf("format mismatch: got %q", cfg.Format)
	}
	if want := []string{"cfgFoo"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", cfg.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", cfg.ExcludeTags)
	}
	if cfg.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !cfg.Force {
		t.Errorf("expected force true after flag override")
	}
	if !cfg.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("http timeout mismatch: got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected default max retries, got %d", cfg.MaxRetries)
	}
}

func TestTablesConfigUnknownKey(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "tables", "--input", "spec.yaml"})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestTablesRequiresInput(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"tables", "--format", "json"})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "--input is required") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestSpecUsageError(t *testing.T) {
	t.Parallel()

	err := specUsageError(&genspec.SpecError{Code: genspec.ParseError, Message: "boom", Location: "spec.yaml", JSONPointer: "#/paths"})
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T", err)
	}
	for _, want := range []string{"spec: boom", "Location: spec.yaml", "Pointer: #/paths"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %q", want, err.Error())
		}
	}

	plain := errors.New("plain")
	if specUsageError(plain) != plain {
		t.Fatalf("expected non-spec errors to pass through")
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
