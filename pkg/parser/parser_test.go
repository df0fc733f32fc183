package parser_test

import (
	"testing"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/parser"
)

func TestParseListWithItems(t *testing.T) {
	prog, err := parser.Parse("animal\n\tdog\n\tcat\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(prog.Lists))
	}
	list := prog.Lists[0].Value
	if list.Name != "animal" {
		t.Fatalf("expected list name 'animal', got %q", list.Name)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
}

func TestParseTopLevelAssignShorthand(t *testing.T) {
	prog, err := parser.Parse("output = hello world\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := prog.Lists[0].Value
	if !list.HasOutput() {
		t.Fatalf("expected the `name = content` shorthand to populate $output")
	}
	if len(list.Items) != 0 {
		t.Fatalf("expected no items from the shorthand form, got %d", len(list.Items))
	}
}

func TestParseNestedDollarOutputLine(t *testing.T) {
	prog, err := parser.Parse("greeting\n\t$output = hi there\n\tunused\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := prog.Lists[0].Value
	if !list.HasOutput() {
		t.Fatalf("expected a nested '$output = ...' line to set the list's $output")
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected the remaining sibling line to still parse as a regular item, got %d items", len(list.Items))
	}
}

func TestParseItemWeight(t *testing.T) {
	prog, err := parser.Parse("output\n\theads^3\n\ttails^1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := prog.Lists[0].Value.Items
	if items[0].Value.Weight == nil || items[0].Value.Weight.Static != 3 {
		t.Fatalf("expected a static weight of 3 on the first item, got %+v", items[0].Value.Weight)
	}
	if items[1].Value.Weight == nil || items[1].Value.Weight.Static != 1 {
		t.Fatalf("expected a static weight of 1 on the second item, got %+v", items[1].Value.Weight)
	}
}

func TestParseBareIdentifierFoldsIntoASingleAutoSublist(t *testing.T) {
	prog, err := parser.Parse("animal\n\tdog\n\t\tbreed\n\t\t\tlab\n\t\t\tpug\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dog := prog.Lists[0].Value.Items[0].Value
	if len(dog.Content) != 0 {
		t.Fatalf("expected the bare-identifier item's content to be cleared, got %+v", dog.Content)
	}
	if len(dog.Sublists) != 1 || dog.Sublists[0].Value.Name != "dog" || len(dog.Sublists[0].Value.Items) != 1 {
		t.Fatalf("expected a single auto-sublist named 'dog' with 1 item, got %+v", dog.Sublists)
	}
	// "breed" is itself a bare identifier, so it recurses the same way one
	// level down instead of becoming a second top-level sublist of "dog".
	breedItem := dog.Sublists[0].Value.Items[0].Value
	if len(breedItem.Sublists) != 1 {
		t.Fatalf("expected the nested 'breed' item to carry its own auto-sublist, got %+v", breedItem)
	}
	breed := breedItem.Sublists[0].Value
	if breed.Name != "breed" || len(breed.Items) != 2 {
		t.Fatalf("expected sublist 'breed' with 2 items, got %+v", breed)
	}
}

func TestParseNonBareItemTreatsDeeperLinesAsNamedSublistHeaders(t *testing.T) {
	prog, err := parser.Parse("animal\n\tgood dog\n\t\tbreed\n\t\t\tlab\n\t\t\tpug\n\t\tcolor\n\t\t\tbrown\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := prog.Lists[0].Value.Items[0].Value
	if len(item.Content) == 0 {
		t.Fatalf("expected a multi-word item's content to survive, not be cleared")
	}
	if len(item.Sublists) != 2 {
		t.Fatalf("expected 2 independently-named sublists, got %d", len(item.Sublists))
	}
	if item.Sublists[0].Value.Name != "breed" || len(item.Sublists[0].Value.Items) != 2 {
		t.Fatalf("expected sublist 'breed' with 2 items, got %+v", item.Sublists[0].Value)
	}
	if item.Sublists[1].Value.Name != "color" || len(item.Sublists[1].Value.Items) != 1 {
		t.Fatalf("expected sublist 'color' with 1 item, got %+v", item.Sublists[1].Value)
	}
}

func TestParseRejectsOverDeepIndentation(t *testing.T) {
	_, err := parser.Parse("animal\n\t\tdog\n")
	if err == nil {
		t.Fatalf("expected an indentation error when an item skips an indent level")
	}
}

func TestParseDetectsDuplicateTopLevelNames(t *testing.T) {
	prog, errs := parser.ParseAll("animal\n\tdog\n\nanimal\n\tcat\n")
	if prog == nil {
		t.Fatalf("expected a program even with a duplicate name")
	}
	found := false
	for _, e := range errs {
		if e.Kind == parser.ErrDuplicateListName {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrDuplicateListName among %v", errs)
	}
}

func TestParseContentPartsAndEscapes(t *testing.T) {
	prog, err := parser.Parse("output\n\tI saw a \\[literal\\] bracket\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := prog.Lists[0].Value.Items[0].Value.Content
	var text string
	for _, p := range parts {
		switch p.Value.Kind {
		case ast.PartText:
			text += p.Value.Text
		case ast.PartEscape:
			text += string(p.Value.Escape)
		}
	}
	want := "I saw a [literal] bracket"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestParseEscapeSpaceAndCarriageReturn(t *testing.T) {
	prog, err := parser.Parse("output\n\ta\\sb\\rc\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := prog.Lists[0].Value.Items[0].Value.Content
	var text string
	for _, p := range parts {
		switch p.Value.Kind {
		case ast.PartText:
			text += p.Value.Text
		case ast.PartEscape:
			text += string(p.Value.Escape)
		}
	}
	if want := "a b\rc"; text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestParseRejectsUnrecognizedEscape(t *testing.T) {
	_, errs := parser.ParseAll("output\n\ta\\qb\n")
	found := false
	for _, e := range errs {
		if e.Kind == parser.ErrInvalidEscape {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrInvalidEscape among %v", errs)
	}
}

func TestParseNumberAndLetterRanges(t *testing.T) {
	prog, err := parser.Parse("output\n\t{1-10} and {a-z}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := prog.Lists[0].Value.Items[0].Value.Content
	var sawNumberRange, sawLetterRange bool
	for _, p := range parts {
		if p.Value.Kind != ast.PartReference {
			continue
		}
		switch p.Value.Reference.Value.Kind {
		case ast.ExprNumberRange:
			sawNumberRange = true
		case ast.ExprLetterRange:
			sawLetterRange = true
		}
	}
	if !sawNumberRange || !sawLetterRange {
		t.Fatalf("expected both a number range and a letter range to parse as direct references, got %+v", parts)
	}
}

func TestParseImportReference(t *testing.T) {
	prog, err := parser.Parse("output\n\t{import:nouns}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := prog.Lists[0].Value.Items[0].Value.Content
	if len(parts) != 1 || parts[0].Value.Kind != ast.PartReference {
		t.Fatalf("expected a single reference part, got %+v", parts)
	}
	ref := parts[0].Value.Reference.Value
	if ref.Kind != ast.ExprImport || ref.ImportName != "nouns" {
		t.Fatalf("expected an import reference to 'nouns', got %+v", ref)
	}
}

func TestParseBareCallExpression(t *testing.T) {
	prog, err := parser.Parse("mammal\n\tdog\n\noutput\n\t[joinLists(mammal).selectOne]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := prog.Lists[1].Value.Items[0].Value.Content
	ref := parts[0].Value.Reference.Value
	// A paren-less `.word` always parses as a property access; it's the
	// evaluator, not the parser, that falls back to a zero-arg method call
	// when `selectOne` doesn't resolve as one.
	if ref.Kind != ast.ExprProperty {
		t.Fatalf("expected the outermost expression to be a property access, got %v", ref.Kind)
	}
	if ref.Property.Value.Name != "selectOne" {
		t.Fatalf("expected the property name to be 'selectOne', got %q", ref.Property.Value.Name)
	}
	if ref.Base.Value.Kind != ast.ExprCall || ref.Base.Value.Method.Value.Name != "joinLists" {
		t.Fatalf("expected the property's base to be a joinLists call, got %+v", ref.Base.Value)
	}
}
