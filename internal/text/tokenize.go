package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSpace collapses runs of white space into a single space and puts
// the text in NFC form. Leading and trailing spaces are kept.
func NormalizeSpace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range norm.NFC.String(s) {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// Tokenize splits text into alternating word and single-space tokens
func Tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	curIsSpace := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		isSp := unicode.IsSpace(r)
		if isSp != curIsSpace {
			flush()
			curIsSpace = isSp
		}
		if isSp {
			if cur.Len() == 0 {
				cur.WriteByte(' ')
			}
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return tokens
}

// IsSpace reports whether s consists only of white space
func IsSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
