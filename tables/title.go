package tables

import (
	"strings"
	"unicode"
)

// Title upper-cases the first letter of every word that has no upper-case
// letters. Words that already carry capitals, such as "FBI" or "foX", are
// kept as written. Letters following a digit or an in-word apostrophe stay
// lower-case, so "start 6pm" becomes "Start 6pm".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		b.WriteString(titleWord(s[start:end]))
		start = -1
	}

	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			b.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return b.String()
}

func titleWord(word string) string {
	for _, r := range word {
		if unicode.IsUpper(r) {
			return word
		}
	}

	runes := []rune(word)
	for i, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsLetter(prev), unicode.IsDigit(prev):
		case prev == '\'' && i > 1 && unicode.IsLetter(runes[i-2]):
		default:
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}
