package textsim

import (
	"regexp"
	"strings"
)

var (
	spacesPattern      = regexp.MustCompile(`[\s\v\p{Z}]+`)
	specialSymbPattern = regexp.MustCompile(`[^A-Za-z0-9 ]`)
	nonAlnumPattern    = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// minBagTokenLen is the minimum length (exclusive) of a bag-of-words token.
const minBagTokenLen = 2

// ClearText canonicalizes text for comparison: lowercase, newlines and
// whitespace runs collapsed to a single space, every character other than
// ASCII letters, digits and space removed, surrounding space trimmed.
func ClearText(text string) string {
	text = strings.ReplaceAll(strings.ToLower(text), "\n", " ")
	text = spacesPattern.ReplaceAllString(text, " ")
	text = specialSymbPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Tokens returns the whitespace tokens of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(ClearText(text))
}

// BagOfWords returns the set of alphanumeric runs longer than two
// characters, lowercased.
func BagOfWords(text string) map[string]struct{} {
	bag := make(map[string]struct{})
	for _, token := range strings.Fields(nonAlnumPattern.ReplaceAllString(text, " ")) {
		if len(token) > minBagTokenLen {
			bag[strings.ToLower(token)] = struct{}{}
		}
	}
	return bag
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
