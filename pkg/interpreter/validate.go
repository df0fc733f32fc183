package interpreter

import (
	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/parser"
)

// Diagnostic is one problem found while validating a generator, carrying
// enough to point an editor integration at the offending text.
type Diagnostic struct {
	Message string
	Line    int
	Col     int
}

// ValidateTemplate parses and compiles source, collecting every
// diagnostic rather than stopping at the first one -- the shape an editor
// integration or a "check my generator" CLI command wants, as opposed to
// Compile's fail-fast behavior used by the actual evaluation path.
func ValidateTemplate(source string) []Diagnostic {
	var diags []Diagnostic

	prog, perrs := parser.ParseAll(source)
	for _, e := range perrs {
		diags = append(diags, Diagnostic{Message: e.Error(), Line: e.Span.Line, Col: e.Span.Col})
	}
	if prog == nil {
		return diags
	}

	_, cerrs := compiler.CompileAll(prog)
	for _, e := range cerrs {
		diags = append(diags, Diagnostic{Message: e.Error(), Line: e.Span.Line, Col: e.Span.Col})
	}
	return diags
}
