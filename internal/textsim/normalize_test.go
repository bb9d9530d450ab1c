package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases and strips punctuation", input: "Hello, World!", expected: "hello world"},
		{name: "collapses whitespace", input: "  a \t b\n\nc  ", expected: "a b c"},
		{name: "drops apostrophes", input: "Don't stop", expected: "dont stop"},
		{name: "removes curly quotes", input: "it’s fine", expected: "its fine"},
		{name: "keeps digits", input: "Route 66?", expected: "route 66"},
		{name: "symbol between spaces leaves a gap", input: "a - b", expected: "a  b"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClearText(tt.input))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tokens("a - b"))
	assert.Empty(t, Tokens("?!"))
}

func TestBagOfWords(t *testing.T) {
	bag := BagOfWords("Let's talk about books")
	assert.Len(t, bag, 4)
	assert.Contains(t, bag, "let")
	assert.Contains(t, bag, "books")
	assert.NotContains(t, bag, "s")

	assert.Empty(t, BagOfWords("hi ok"))
}

func TestJaccard(t *testing.T) {
	a := BagOfWords("let's talk about books")
	b := BagOfWords("let's talk about")

	assert.InDelta(t, 0.75, Jaccard(a, b), 1e-9)
	assert.InDelta(t, 1.0, Jaccard(a, a), 1e-9)
	assert.Equal(t, 0.0, Jaccard(map[string]struct{}{}, map[string]struct{}{}))
}
