package evaluator_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/evaluator"
	"its-hmny.dev/perchance/pkg/parser"
)

func mustCompile(t *testing.T, source string) *compiler.CompiledProgram {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cp, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return cp
}

func evalSeeded(t *testing.T, source string, seed int64) string {
	t.Helper()
	cp := mustCompile(t, source)
	out, err := evaluator.Evaluate(context.Background(), cp, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	return out
}

func TestWeightedSelectionFavorsHeavierItems(t *testing.T) {
	source := "output\n\theads^99\n\ttails^1\n"
	cp := mustCompile(t, source)

	counts := map[string]int{}
	for seed := int64(0); seed < 500; seed++ {
		out, err := evaluator.Evaluate(context.Background(), cp, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("unexpected evaluation error: %v", err)
		}
		counts[out]++
	}

	if counts["heads"] <= counts["tails"] {
		t.Fatalf("expected heads (weight 99) to be drawn far more than tails (weight 1), got %v", counts)
	}
}

func TestZeroTotalWeightFallsBackToUniform(t *testing.T) {
	source := "output\n\ta^0\n\tb^0\n"
	cp := mustCompile(t, source)

	seen := map[string]bool{}
	for seed := int64(0); seed < 50; seed++ {
		out, err := evaluator.Evaluate(context.Background(), cp, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("unexpected evaluation error: %v", err)
		}
		seen[out] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected both items to appear under the uniform fallback, got %v", seen)
	}
}

func TestAssignmentCapturesIdentityNotJustText(t *testing.T) {
	source := "animal\n\tdog\n\tcat\n\noutput\n\t[x = animal, x] and [x]\n"

	for seed := int64(0); seed < 20; seed++ {
		out := evalSeeded(t, source, seed)
		if out != "dog and dog" && out != "cat and cat" {
			t.Fatalf("seed %d: expected matching pair, got %q", seed, out)
		}
	}
}

func TestItemWithSublistsRecursesInsteadOfRenderingOwnContent(t *testing.T) {
	source := "animal\n\tdog\n\t\tbreed\n\t\t\tlab\n\t\t\tpug\n\tcat\n\noutput\n\t[animal]\n"

	seen := map[string]bool{}
	for seed := int64(0); seed < 50; seed++ {
		out := evalSeeded(t, source, seed)
		seen[out] = true
	}
	for out := range seen {
		if out != "lab" && out != "pug" && out != "cat" {
			t.Fatalf("expected only lab/pug/cat, got %q", out)
		}
	}
	if seen["dog"] {
		t.Fatalf("a bare-identifier item with sublists should never render its own (cleared) content")
	}
}

func TestConsumableListExhaustsWithoutRepeats(t *testing.T) {
	source := "item\n\ta\n\tb\n\tc\n\noutput\n\t[c = item.consumableList, c], [c], [c]\n"

	for seed := int64(0); seed < 20; seed++ {
		out := evalSeeded(t, source, seed)
		if len(out) == 0 {
			t.Fatalf("seed %d: expected non-empty output", seed)
		}
		parts := splitComma(out)
		if len(parts) != 3 {
			t.Fatalf("seed %d: expected 3 parts, got %q", seed, out)
		}
		seen := map[string]bool{}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if seen[p] {
				t.Fatalf("seed %d: consumableList repeated %q in %q", seed, p, out)
			}
			seen[p] = true
		}
	}
}

func TestSelectAllReturnsEveryItem(t *testing.T) {
	source := "item\n\ta\n\tb\n\tc\n\noutput\n\t[item.selectAll.joinItems(\",\")]\n"
	out := evalSeeded(t, source, 1)
	if out != "a,b,c" {
		t.Fatalf("expected selectAll to preserve declaration order, got %q", out)
	}
}

func TestSelectUniqueNeverRepeatsWithinOneCall(t *testing.T) {
	source := "item\n\ta\n\tb\n\tc\n\td\n\noutput\n\t[item.selectUnique(3).joinItems(\",\")]\n"

	for seed := int64(0); seed < 30; seed++ {
		out := evalSeeded(t, source, seed)
		parts := splitComma(out)
		if len(parts) != 3 {
			t.Fatalf("seed %d: expected 3 parts, got %q", seed, out)
		}
		seen := map[string]bool{}
		for _, p := range parts {
			if seen[p] {
				t.Fatalf("seed %d: selectUnique repeated %q in %q", seed, p, out)
			}
			seen[p] = true
		}
	}
}

func TestSelectManyAllowsReplacement(t *testing.T) {
	source := "item\n\ta\n\noutput\n\t[item.selectMany(4).joinItems(\",\")]\n"
	out := evalSeeded(t, source, 1)
	if out != "a,a,a,a" {
		t.Fatalf("expected 4 draws from a single-item list to all read 'a', got %q", out)
	}
}

func TestPropertyFallbackRecoversFromUndefinedProperty(t *testing.T) {
	source := "item\n\tfox\n\noutput\n\t[item.missing || \"default\"]\n"
	out := evalSeeded(t, source, 1)
	if out != "default" {
		t.Fatalf("expected fallback to trigger on a missing property, got %q", out)
	}
}

func TestDynamicPropertyPersistsAcrossReferences(t *testing.T) {
	source := "output\n\t[this.x = \"set\", this.x]\n"
	out := evalSeeded(t, source, 1)
	if out != "set" {
		t.Fatalf("expected a property set on this to be readable in the same scope, got %q", out)
	}
}

func TestGrammarMethodsChainOffContent(t *testing.T) {
	tests := map[string]string{
		"output\n\t[\"fox\".pluralForm]\n":                 "foxes",
		"output\n\t[\"geese\".singularForm]\n":              "goose",
		"output\n\t[\"walk\".pastTenseForm]\n":               "walked",
		"output\n\t[\"run\".presentTenseForm]\n":             "runs",
		"output\n\t[\"go\".futureTenseForm]\n":               "will go",
		"output\n\t[\"is\".negativeForm]\n":                  "is not",
		"output\n\t[\"fox\".possessiveForm]\n":               "fox's",
		"output\n\t[\"hello world\".titleCase]\n":            "Hello World",
		"output\n\t[\"hello world\".sentenceCase]\n":         "Hello world",
		"output\n\t[\"Shout\".upperCase]\n":                  "SHOUT",
		"output\n\t[\"Quiet\".lowerCase]\n":                  "quiet",
	}
	for source, want := range tests {
		got := evalSeeded(t, source, 1)
		if got != want {
			t.Errorf("source %q: want %q, got %q", source, want, got)
		}
	}
}

func TestBinaryOpArithmeticAndComparison(t *testing.T) {
	tests := map[string]string{
		"output\n\t[2 + 3]\n":             "5",
		"output\n\t[10 - 4]\n":            "6",
		"output\n\t[3 * 4]\n":             "12",
		"output\n\t[10 / 4]\n":            "2.5",
		"output\n\t[10 % 3]\n":            "1",
		"output\n\t[2 < 3]\n":             "true",
		"output\n\t[\"a\" == \"a\"]\n":    "true",
		"output\n\t[\"a\" != \"b\"]\n":    "true",
		"output\n\t[\"true\" && \"false\"]\n": "false",
		"output\n\t[\"false\" || \"true\"]\n": "true",
		"output\n\t[\"a\" + \"b\"]\n":     "ab",
	}
	for source, want := range tests {
		got := evalSeeded(t, source, 1)
		if got != want {
			t.Errorf("source %q: want %q, got %q", source, want, got)
		}
	}
}

func TestDivideByZeroIsNotRecoverable(t *testing.T) {
	cp := mustCompile(t, "output\n\t[1 / 0]\n")
	_, err := evaluator.Evaluate(context.Background(), cp, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("expected a divide-by-zero error")
	}
}

func TestJoinListsMergesNamedLists(t *testing.T) {
	source := "mammal\n\tdog\n\nreptile\n\tsnake\n\noutput\n\t[joinLists(mammal, reptile).selectMany(6).joinItems(\",\")]\n"

	for seed := int64(0); seed < 20; seed++ {
		out := evalSeeded(t, source, seed)
		for _, w := range splitComma(out) {
			if w != "dog" && w != "snake" {
				t.Fatalf("seed %d: joinLists produced unexpected item %q in %q", seed, w, out)
			}
		}
	}
}

func TestTracingRecordsTheEntryPointSelection(t *testing.T) {
	cp := mustCompile(t, "animal\n\tdog\n\tcat\n\noutput\n\t[animal]\n")
	ev := evaluator.New(cp, rand.New(rand.NewSource(1))).WithTracing()
	if _, err := ev.Evaluate(context.Background()); err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	root := ev.Trace()
	if root == nil {
		t.Fatalf("expected a non-nil trace root once tracing is enabled")
	}
	if root.Label != "output" {
		t.Fatalf("expected the root trace node to be the entry-point list, got %q", root.Label)
	}
}

func TestOutputEntryPointFallsBackToDollarOutputThenLastList(t *testing.T) {
	if got := evalSeeded(t, "$output\n\tfirst\n\noutput\n\tsecond\n", 1); got != "first" {
		t.Fatalf("expected $output to take priority over output, got %q", got)
	}
	if got := evalSeeded(t, "greeting\n\thello\n", 1); got != "hello" {
		t.Fatalf("expected the last-declared list to be used as a fallback entry point, got %q", got)
	}
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
