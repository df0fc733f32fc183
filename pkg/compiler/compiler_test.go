package compiler_test

import (
	"testing"

	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/parser"
)

func compileSource(t *testing.T, source string) (*compiler.CompiledProgram, compiler.Errors) {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return compiler.CompileAll(prog)
}

func TestCompileAcceptsWellFormedPrograms(t *testing.T) {
	test := func(source string) {
		_, errs := compileSource(t, source)
		if len(errs) != 0 {
			t.Errorf("source %q: expected no compile errors, got %v", source, errs)
		}
	}

	test("output\n\thello\n")
	test("animal\n\tdog\n\tcat\n\noutput\n\t[animal]\n")
	test("output = a direct output shorthand\n")
	test("greeting\n\t$output = hi there\n")
}

func TestCompileRejectsDuplicateTopLevelNames(t *testing.T) {
	// The parser reports the duplicate too, so take its program via ParseAll
	// to reach the compiler's own check.
	prog, _ := parser.ParseAll("animal\n\tdog\n\nanimal\n\tcat\n")
	_, errs := compiler.CompileAll(prog)
	if len(errs) == 0 {
		t.Fatalf("expected a duplicate-list compile error")
	}
	if errs[0].Kind != compiler.ErrDuplicateList {
		t.Fatalf("expected ErrDuplicateList, got %v", errs[0].Kind)
	}
}

func TestCompileRejectsEmptyImportName(t *testing.T) {
	_, errs := compileSource(t, "output\n\t{import:}\n")
	if len(errs) == 0 {
		t.Fatalf("expected an invalid-import compile error")
	}
	found := false
	for _, e := range errs {
		if e.Kind == compiler.ErrInvalidImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrInvalidImport among %v", errs)
	}
}

func TestCompileRejectsNegativeStaticWeight(t *testing.T) {
	_, errs := compileSource(t, "output\n\tx^-5\n")
	found := false
	for _, e := range errs {
		if e.Kind == compiler.ErrInvalidWeight {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrInvalidWeight among %v", errs)
	}
}

func TestCompileRejectsListsWithNoItemsAndNoOutput(t *testing.T) {
	prog, err := parser.Parse("output\n\thello\n")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	prog.Lists = append(prog.Lists, prog.Lists[0])
	prog.Lists[1].Value.Name = "empty"
	prog.Lists[1].Value.Items = nil

	_, errs := compiler.CompileAll(prog)
	found := false
	for _, e := range errs {
		if e.Kind == compiler.ErrEmptyList {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrEmptyList among %v", errs)
	}
}

func TestCompileDetectsCircularOutputChains(t *testing.T) {
	_, errs := compileSource(t, "a = [b]\nb = [a]\n")
	found := false
	for _, e := range errs {
		if e.Kind == compiler.ErrCircularOutput {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrCircularOutput among %v", errs)
	}
}

func TestCompiledListPreservesDeclarationOrder(t *testing.T) {
	cp, errs := compileSource(t, "first\n\ta\n\nsecond\n\tb\n\nthird\n\tc\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}

	var names []string
	cp.Lists.Iterator()(func(name string, _ compiler.CompiledList) bool {
		names = append(names, name)
		return true
	})
	want := []string{"first", "second", "third"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
