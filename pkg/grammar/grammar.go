// Package grammar implements the pure string-to-string transforms exposed
// as evaluator methods (pluralForm, pastTenseForm, and so on). The
// irregular-word tables are pinned exactly to keep generator output
// reproducible across versions of this module.
package grammar

import (
	"strings"
	"unicode"
)

// ToTitleCase upper-cases the first letter of every whitespace-separated
// word.
func ToTitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

// ToSentenceCase upper-cases only the first letter of s.
func ToSentenceCase(s string) string {
	return upperFirst(s)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var pluralIrregulars = [][2]string{
	{"child", "children"}, {"person", "people"}, {"man", "men"}, {"woman", "women"},
	{"tooth", "teeth"}, {"foot", "feet"}, {"mouse", "mice"}, {"goose", "geese"},
	{"ox", "oxen"}, {"sheep", "sheep"}, {"deer", "deer"}, {"fish", "fish"},
}

// ToPlural applies English pluralization rules, checking irregulars first.
func ToPlural(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := strings.ToLower(trimmed)

	for _, pair := range pluralIrregulars {
		if lower == pair[0] {
			return pair[1]
		}
	}

	switch {
	case endsInAny(lower, "s", "ss", "sh", "ch", "x", "z"):
		return trimmed + "es"
	case strings.HasSuffix(lower, "y") && len(trimmed) > 1 && !isVowel(secondLast(trimmed)):
		return trimmed[:len(trimmed)-1] + "ies"
	case strings.HasSuffix(lower, "f"):
		return trimmed[:len(trimmed)-1] + "ves"
	case strings.HasSuffix(lower, "fe"):
		return trimmed[:len(trimmed)-2] + "ves"
	case strings.HasSuffix(lower, "o") && len(trimmed) > 1 && !isVowel(secondLast(trimmed)):
		return trimmed + "es"
	default:
		return trimmed + "s"
	}
}

var singularIrregulars = [][2]string{
	{"children", "child"}, {"people", "person"}, {"men", "man"}, {"women", "woman"},
	{"teeth", "tooth"}, {"feet", "foot"}, {"mice", "mouse"}, {"geese", "goose"},
	{"oxen", "ox"}, {"sheep", "sheep"}, {"deer", "deer"}, {"fish", "fish"},
}

// ToSingular reverses common English pluralization rules.
func ToSingular(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := strings.ToLower(trimmed)

	for _, pair := range singularIrregulars {
		if lower == pair[0] {
			return pair[1]
		}
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(trimmed) > 3:
		return trimmed[:len(trimmed)-3] + "y"
	case strings.HasSuffix(lower, "ves") && len(trimmed) > 3:
		return trimmed[:len(trimmed)-3] + "fe"
	case strings.HasSuffix(lower, "oes") && len(trimmed) > 3:
		return trimmed[:len(trimmed)-2]
	case strings.HasSuffix(lower, "ses") && len(trimmed) > 3:
		return trimmed[:len(trimmed)-2]
	case endsInAny(lower, "xes", "zes", "ches", "shes"):
		if len(trimmed) > 2 {
			return trimmed[:len(trimmed)-2]
		}
		return trimmed
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		if len(trimmed) > 1 {
			return trimmed[:len(trimmed)-1]
		}
		return trimmed
	default:
		return trimmed
	}
}

var pastTenseIrregulars = [][2]string{
	{"be", "was"}, {"have", "had"}, {"do", "did"}, {"say", "said"}, {"go", "went"},
	{"get", "got"}, {"make", "made"}, {"know", "knew"}, {"think", "thought"}, {"take", "took"},
	{"see", "saw"}, {"come", "came"}, {"want", "wanted"}, {"give", "gave"}, {"use", "used"},
	{"find", "found"}, {"tell", "told"}, {"ask", "asked"}, {"work", "worked"}, {"feel", "felt"},
	{"leave", "left"}, {"put", "put"}, {"mean", "meant"}, {"keep", "kept"}, {"let", "let"},
	{"begin", "began"}, {"seem", "seemed"}, {"help", "helped"}, {"show", "showed"}, {"hear", "heard"},
	{"play", "played"}, {"run", "ran"}, {"move", "moved"}, {"live", "lived"}, {"believe", "believed"},
	{"bring", "brought"}, {"write", "wrote"}, {"sit", "sat"}, {"stand", "stood"}, {"lose", "lost"},
	{"pay", "paid"}, {"meet", "met"}, {"include", "included"}, {"continue", "continued"}, {"set", "set"},
	{"learn", "learned"}, {"change", "changed"}, {"lead", "led"}, {"understand", "understood"}, {"watch", "watched"},
	{"follow", "followed"}, {"stop", "stopped"}, {"create", "created"}, {"speak", "spoke"}, {"read", "read"},
	{"spend", "spent"}, {"grow", "grew"}, {"open", "opened"}, {"walk", "walked"}, {"win", "won"},
	{"teach", "taught"}, {"offer", "offered"}, {"remember", "remembered"}, {"consider", "considered"}, {"appear", "appeared"},
	{"buy", "bought"}, {"serve", "served"}, {"die", "died"}, {"send", "sent"}, {"build", "built"},
	{"stay", "stayed"}, {"fall", "fell"}, {"cut", "cut"}, {"reach", "reached"}, {"kill", "killed"},
	{"raise", "raised"}, {"pass", "passed"}, {"sell", "sold"}, {"decide", "decided"}, {"return", "returned"},
	{"explain", "explained"}, {"hope", "hoped"}, {"develop", "developed"}, {"carry", "carried"}, {"break", "broke"},
	{"receive", "received"}, {"agree", "agreed"}, {"support", "supported"}, {"hit", "hit"}, {"produce", "produced"},
	{"eat", "ate"}, {"cover", "covered"}, {"catch", "caught"}, {"draw", "drew"},
}

// ToPastTense applies simple-past conjugation, checking irregulars first.
func ToPastTense(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := strings.ToLower(trimmed)

	for _, pair := range pastTenseIrregulars {
		if lower == pair[0] {
			return pair[1]
		}
	}

	switch {
	case strings.HasSuffix(lower, "e"):
		return trimmed + "d"
	case strings.HasSuffix(lower, "y") && len(trimmed) > 1 && !isVowel(secondLast(trimmed)):
		return trimmed[:len(trimmed)-1] + "ied"
	default:
		return trimmed + "ed"
	}
}

var presentTenseIrregulars = [][2]string{
	{"be", "is"}, {"have", "has"}, {"do", "does"}, {"go", "goes"},
	{"was", "is"}, {"were", "are"}, {"had", "has"}, {"did", "does"}, {"went", "goes"},
	{"got", "gets"}, {"made", "makes"}, {"knew", "knows"}, {"thought", "thinks"}, {"took", "takes"},
	{"saw", "sees"}, {"came", "comes"}, {"gave", "gives"}, {"found", "finds"}, {"told", "tells"},
	{"asked", "asks"}, {"felt", "feels"}, {"left", "leaves"}, {"put", "puts"}, {"meant", "means"},
	{"kept", "keeps"}, {"let", "lets"}, {"began", "begins"}, {"seemed", "seems"}, {"showed", "shows"},
	{"heard", "hears"}, {"ran", "runs"}, {"moved", "moves"}, {"lived", "lives"}, {"brought", "brings"},
	{"wrote", "writes"}, {"sat", "sits"}, {"stood", "stands"}, {"lost", "loses"}, {"paid", "pays"},
	{"met", "meets"}, {"set", "sets"}, {"led", "leads"}, {"understood", "understands"}, {"followed", "follows"},
	{"stopped", "stops"}, {"spoke", "speaks"}, {"read", "reads"}, {"spent", "spends"}, {"grew", "grows"},
	{"walked", "walks"}, {"won", "wins"}, {"taught", "teaches"}, {"remembered", "remembers"}, {"appeared", "appears"},
	{"bought", "buys"}, {"served", "serves"}, {"died", "dies"}, {"sent", "sends"}, {"built", "builds"},
	{"stayed", "stays"}, {"fell", "falls"}, {"cut", "cuts"}, {"reached", "reaches"}, {"killed", "kills"},
	{"raised", "raises"}, {"passed", "passes"}, {"sold", "sells"}, {"decided", "decides"}, {"returned", "returns"},
	{"explained", "explains"}, {"hoped", "hopes"}, {"carried", "carries"}, {"broke", "breaks"}, {"received", "receives"},
	{"agreed", "agrees"}, {"hit", "hits"}, {"produced", "produces"}, {"ate", "eats"}, {"caught", "catches"},
	{"drew", "draws"},
}

// ToPresentTense applies third-person-singular present conjugation,
// checking irregulars first.
func ToPresentTense(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := strings.ToLower(trimmed)

	for _, pair := range presentTenseIrregulars {
		if lower == pair[0] {
			return pair[1]
		}
	}

	if strings.HasSuffix(lower, "s") || strings.HasSuffix(lower, "es") {
		return trimmed
	}

	switch {
	case strings.HasSuffix(lower, "y") && len(trimmed) > 1 && !isVowel(secondLast(trimmed)):
		return trimmed[:len(trimmed)-1] + "ies"
	case endsInAny(lower, "s", "ss", "sh", "ch", "x", "z", "o"):
		return trimmed + "es"
	default:
		return trimmed + "s"
	}
}

// ToFutureTense prepends "will " to the base form.
func ToFutureTense(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	return "will " + trimmed
}

var negativeAuxiliaries = map[string]bool{
	"is": true, "are": true, "am": true, "was": true, "were": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "should": true, "could": true, "can": true,
	"may": true, "might": true, "must": true,
}

// ToNegativeForm negates a verb phrase: auxiliaries get " not" appended,
// everything else is treated as a base-form verb needing "does not ".
func ToNegativeForm(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := strings.ToLower(trimmed)
	if negativeAuxiliaries[lower] {
		return trimmed + " not"
	}
	return "does not " + trimmed
}

// ToPossessive appends "'s", or a bare "'" if s already ends in "s".
func ToPossessive(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if strings.HasSuffix(trimmed, "s") {
		return trimmed + "'"
	}
	return trimmed + "'s"
}

func endsInAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func secondLast(s string) rune {
	r := []rune(s)
	if len(r) < 2 {
		return 0
	}
	return r[len(r)-2]
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
