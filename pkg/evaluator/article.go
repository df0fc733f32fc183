package evaluator

import "strings"

// startsWithVowelSound decides the article form for word using a plain
// first-letter check, matching the original interpreter's
// starts_with_vowel_sound exactly -- no irregular-word table ("hour",
// "university", ...): the ASCII vowel check is all there is.
func startsWithVowelSound(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}
