package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes accented characters and strips combining marks so
// "Café" and "Cafe" normalize identically before the ASCII filter runs.
var foldChain = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.In(unicode.Cf)),
	norm.NFC,
)

// Normalize canonicalizes a raw text fragment. Characters outside
// letters, digits, whitespace, and &@-'. become spaces, then whitespace
// collapses to single spaces with the ends trimmed.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "")
	if folded, _, err := transform.String(foldChain, text); err == nil {
		text = folded
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return CollapseSpaces(b.String())
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return true
	case r == '&' || r == '@' || r == '-' || r == '\'' || r == '.':
		return true
	default:
		return false
	}
}

// CollapseSpaces collapses runs of whitespace to single spaces and trims
// leading and trailing whitespace.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// UppercaseCount returns the number of uppercase letters in text.
func UppercaseCount(text string) int {
	count := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			count++
		}
	}
	return count
}

// IsTitleCased reports whether every whitespace-delimited token starts
// with an uppercase letter.
func IsTitleCased(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		first := []rune(token)[0]
		if !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}

// CapitalizedTokens returns how many whitespace-delimited tokens begin
// with an uppercase letter.
func CapitalizedTokens(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if unicode.IsUpper([]rune(token)[0]) {
			count++
		}
	}
	return count
}
