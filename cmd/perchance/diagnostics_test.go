package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"its-hmny.dev/perchance/pkg/interpreter"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("unexpected error creating pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("unexpected error reading captured output: %v", err)
	}
	return buf.String()
}

func TestPrintDiagnosticsPointsAtTheOffendingLine(t *testing.T) {
	source := "output\n\t{import:}\n"
	diags := interpreter.ValidateTemplate(source)
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic for an empty import name")
	}

	out := captureStdout(t, func() { printDiagnostics(source, diags) })
	if !strings.Contains(out, "error:") {
		t.Fatalf("expected the rendered output to contain an 'error:' line, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected a caret pointing at the offending column, got %q", out)
	}
}

func TestPrintDiagnosticsSkipsOutOfRangeLines(t *testing.T) {
	diags := []interpreter.Diagnostic{{Message: "boom", Line: 99, Col: 1}}
	out := captureStdout(t, func() { printDiagnostics("output\n\thello\n", diags) })
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected the message to still print even with an out-of-range line, got %q", out)
	}
}
