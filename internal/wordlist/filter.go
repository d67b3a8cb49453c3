// Package wordlist provides the typing drill vocabulary and word list helpers.
package wordlist

import "strings"

// NormalizeWord upper-cases a word and reports whether it is typeable: non-empty
// and made of ASCII letters only.
func NormalizeWord(word string) (string, bool) {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" {
		return "", false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'A' || ch > 'Z' {
			return "", false
		}
	}
	return word, true
}

// NormalizeParagraph upper-cases a paragraph, collapses runs of whitespace and
// reports whether only ASCII letters and single spaces remain.
func NormalizeParagraph(text string) (string, bool) {
	text = strings.Join(strings.Fields(strings.ToUpper(text)), " ")
	if text == "" {
		return "", false
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != ' ' && (ch < 'A' || ch > 'Z') {
			return "", false
		}
	}
	return text, true
}
