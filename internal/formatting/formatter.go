// Package formatting makes retrieved responses read naturally: every
// sentence that opens like a question ends with a question mark.
package formatting

import (
	"regexp"
	"strings"
)

var (
	questionPattern    = regexp.MustCompile(`(?i)^(do|can|could|will|would|how|who|where|when|what|why)\b`)
	terminalPattern    = regexp.MustCompile(`[a-z ][.!?]$`)
	sentenceEndPattern = regexp.MustCompile(`[.!?]+\s+`)
)

// SentenceSplitter splits text into ordered sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// RuleSplitter ends a sentence after a run of '.', '!' or '?' followed by
// whitespace.
type RuleSplitter struct{}

// Split implements SentenceSplitter.
func (RuleSplitter) Split(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndPattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// IsQuestion reports whether the sentence opens with an interrogative word.
func IsQuestion(sentence string) bool {
	return questionPattern.MatchString(sentence)
}

// AddQuestionMark trims the sentence and makes it end with '?', replacing a
// final '.', '!' or '?' that follows a letter or a space.
func AddQuestionMark(sentence string) string {
	sentence = strings.TrimSpace(sentence)
	if terminalPattern.MatchString(strings.ToLower(sentence)) {
		return sentence[:len(sentence)-1] + "?"
	}
	return sentence + "?"
}

// Formatter rewrites candidates sentence by sentence.
type Formatter struct {
	splitter SentenceSplitter
}

// New creates a formatter. A nil splitter selects RuleSplitter.
func New(splitter SentenceSplitter) *Formatter {
	if splitter == nil {
		splitter = RuleSplitter{}
	}
	return &Formatter{splitter: splitter}
}

// Format adds question marks to question sentences and joins all sentences
// with single spaces.
func (f *Formatter) Format(text string) string {
	sentences := f.splitter.Split(text)
	for i, sentence := range sentences {
		if IsQuestion(sentence) {
			sentences[i] = AddQuestionMark(sentence)
		}
	}
	return strings.Join(sentences, " ")
}
