package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.ImportDir != "." {
		t.Fatalf("expected default ImportDir '.', got %q", cfg.ImportDir)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("expected default Concurrency 4, got %d", cfg.Concurrency)
	}
}

func TestLoadConfigMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Fatalf("expected defaultConfig() for a missing file, got %+v", cfg)
	}
}

func TestLoadConfigReadsExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "importDir: ./generators\nconcurrency: 8\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ImportDir != "./generators" || cfg.Concurrency != 8 {
		t.Fatalf("expected ImportDir=./generators Concurrency=8, got %+v", cfg)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("not: [valid yaml"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected an error parsing malformed YAML")
	}
}

func TestHandleRendersGeneratorToOutputFile(t *testing.T) {
	input := filepath.Join(t.TempDir(), "generator.perchance")
	output := filepath.Join(t.TempDir(), "out.txt")
	source := "animal\n\tdog\n\tcat\n\noutput\n\tI saw a [animal].\n"
	if err := os.WriteFile(input, []byte(source), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	status := handle([]string{input}, map[string]string{"output": output, "seed": "1"})
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error reading rendered output: %v", err)
	}
	text := strings.TrimSpace(string(got))
	if text != "I saw a dog." && text != "I saw a cat." {
		t.Fatalf("unexpected rendered output %q", text)
	}
}

func TestHandleValidateReportsNoDiagnosticsForWellFormedSource(t *testing.T) {
	input := filepath.Join(t.TempDir(), "generator.perchance")
	if err := os.WriteFile(input, []byte("output\n\thello\n"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	status := handle([]string{input}, map[string]string{"validate": "true"})
	if status != 0 {
		t.Fatalf("expected exit status 0 for a well-formed generator, got %d", status)
	}
}

func TestHandleValidateReportsDiagnosticsForMalformedSource(t *testing.T) {
	input := filepath.Join(t.TempDir(), "generator.perchance")
	if err := os.WriteFile(input, []byte("output\n\t{import:}\n"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	status := handle([]string{input}, map[string]string{"validate": "true"})
	if status != 1 {
		t.Fatalf("expected exit status 1 for a malformed generator, got %d", status)
	}
}

func TestHandleRejectsInvalidSeed(t *testing.T) {
	input := filepath.Join(t.TempDir(), "generator.perchance")
	if err := os.WriteFile(input, []byte("output\n\thello\n"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	status := handle([]string{input}, map[string]string{"seed": "not-a-number"})
	if status != -1 {
		t.Fatalf("expected exit status -1 for an invalid seed, got %d", status)
	}
}

func TestHandleRendersCountTimes(t *testing.T) {
	input := filepath.Join(t.TempDir(), "generator.perchance")
	output := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(input, []byte("output\n\thello\n"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	status := handle([]string{input}, map[string]string{"output": output, "count": "3"})
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error reading rendered output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(got), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rendered lines, got %d: %q", len(lines), string(got))
	}
}
