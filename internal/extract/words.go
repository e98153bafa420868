package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HasPhrase reports whether phrase occurs in text as whole words, ignoring case.
func HasPhrase(text, phrase string) bool {
	text = strings.ToLower(text)
	phrase = strings.ToLower(phrase)
	if phrase == "" {
		return false
	}
	for from := 0; from <= len(text)-len(phrase); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

// FirstPhrase returns the first phrase of the list present in text.
func FirstPhrase(text string, phrases ...string) (string, bool) {
	for _, p := range phrases {
		if HasPhrase(text, p) {
			return p, true
		}
	}
	return "", false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
