package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"its-hmny.dev/perchance/pkg/interpreter"
)

// printDiagnostics renders each diagnostic with the offending source line
// and a caret underneath it. Column alignment uses go-runewidth rather
// than a plain rune count, since a generator's text can contain
// double-width characters (CJK, emoji) that would otherwise throw the
// caret off.
func printDiagnostics(source string, diags []interpreter.Diagnostic) {
	lines := strings.Split(source, "\n")
	for _, d := range diags {
		fmt.Printf("error: %s\n", d.Message)
		if d.Line < 1 || d.Line > len(lines) {
			continue
		}
		line := lines[d.Line-1]
		fmt.Printf("  %d | %s\n", d.Line, line)

		prefix := ""
		if d.Col > 1 && d.Col-1 <= len(line) {
			prefix = line[:d.Col-1]
		}
		pad := runewidth.StringWidth(prefix) + len(fmt.Sprintf("  %d | ", d.Line))
		fmt.Printf("%s^\n", strings.Repeat(" ", pad))
	}
}
