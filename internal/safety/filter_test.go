package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruthenian8/dream/models"
)

func newTestFilter() *Filter {
	banned := models.NewBannedContent(
		[]string{"I don't know"},
		[]string{"Shut up"},
		[]string{"damn"},
		[]string{"you"},
	)
	return NewFilter(banned, DefaultFilterConfig())
}

func TestFilter_Check(t *testing.T) {
	filter := newTestFilter()

	tests := []struct {
		name      string
		candidate string
		history   []string
		expected  Rejection
	}{
		{name: "banned response", candidate: "I don't know.", expected: RejectBannedResponse},
		{name: "greeting first token", candidate: "Hello there, friend", expected: RejectGreeting},
		{name: "greeting within window", candidate: "well hi there", expected: RejectGreeting},
		{name: "greeting outside window", candidate: "that is a nice dog hi", expected: RejectNone},
		{name: "banned word", candidate: "Damn it", expected: RejectBannedWord},
		{name: "question word in question", candidate: "do you like it?", expected: RejectQuestionWord},
		{name: "question word in statement", candidate: "I like you.", expected: RejectNone},
		{name: "banned phrase", candidate: "Oh, shut up please", expected: RejectBannedPhrase},
		{name: "long token", candidate: "look " + strings.Repeat("a", 31), expected: RejectLongToken},
		{name: "token at limit", candidate: "look " + strings.Repeat("a", 30), expected: RejectNone},
		{
			name:      "repeats own turn",
			candidate: "I have a cat too",
			history:   []string{"my dog is great", "hello bot", "i have a cat", "nice"},
			expected:  RejectSelfRepetition,
		},
		{
			name:      "repeats user turn",
			candidate: "nice weather today",
			history:   []string{"i have a cat", "nice weather today"},
			expected:  RejectNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Check(tt.candidate, OwnPriorTurns(tt.history))
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected == RejectNone, filter.Allowed(tt.candidate, OwnPriorTurns(tt.history)))
		})
	}
}

func TestFilter_RuleOrder(t *testing.T) {
	filter := newTestFilter()
	// greeting and banned word both apply; greeting is checked first
	assert.Equal(t, RejectGreeting, filter.Check("hi damn", nil))
}

func TestOwnPriorTurns(t *testing.T) {
	tests := []struct {
		name     string
		history  []string
		expected [][]string
	}{
		{name: "empty", history: nil, expected: nil},
		{name: "single turn", history: []string{"hello"}, expected: nil},
		{name: "two turns", history: []string{"I said THIS.", "you"}, expected: [][]string{{"i", "said", "this"}}},
		{
			name:     "alternating",
			history:  []string{"a one", "b", "a two", "b", "a three", "ctx"},
			expected: [][]string{{"a", "one"}, {"a", "two"}, {"a", "three"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OwnPriorTurns(tt.history))
		})
	}
}
