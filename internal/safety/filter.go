package safety

import (
	"strings"

	"github.com/ruthenian8/dream/internal/textsim"
	"github.com/ruthenian8/dream/models"
)

// Rejection names the rule that removed a candidate.
type Rejection string

const (
	RejectNone           Rejection = ""
	RejectBannedResponse Rejection = "banned_response"
	RejectGreeting       Rejection = "greeting"
	RejectBannedWord     Rejection = "banned_word"
	RejectQuestionWord   Rejection = "banned_word_for_question"
	RejectBannedPhrase   Rejection = "banned_phrase"
	RejectLongToken      Rejection = "long_token"
	RejectSelfRepetition Rejection = "self_repetition"
)

// FilterConfig holds the thresholds of the candidate filter.
type FilterConfig struct {
	BannedResponseThreshold float64  // ratio above which a candidate duplicates a banned response
	RepetitionThreshold     float64  // ratio above which a candidate repeats an own prior turn
	GreetingWords           []string // words banned at the start of a candidate
	GreetingWindow          int      // number of leading tokens checked for greetings
	MaxTokenLength          int      // longer tokens mark garbled output
}

// DefaultFilterConfig returns the thresholds the ranking model was tuned with.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		BannedResponseThreshold: 0.9,
		RepetitionThreshold:     0.6,
		GreetingWords:           []string{"hi", "hello"},
		GreetingWindow:          3,
		MaxTokenLength:          30,
	}
}

// Filter applies content-safety and repetition rules to candidates.
type Filter struct {
	config          FilterConfig
	bannedResponses [][]string
	bannedPhrases   []string
	bannedWords     map[string]struct{}
	questionWords   map[string]struct{}
	greetings       map[string]struct{}
}

// NewFilter builds a filter from the static denylists.
func NewFilter(banned models.BannedContent, config FilterConfig) *Filter {
	f := &Filter{
		config:          config,
		bannedResponses: make([][]string, 0, len(banned.Responses)),
		bannedPhrases:   make([]string, 0, len(banned.Phrases)),
		bannedWords:     toSet(banned.Words),
		questionWords:   toSet(banned.WordsForQuestions),
		greetings:       toSet(config.GreetingWords),
	}
	for _, response := range banned.Responses {
		f.bannedResponses = append(f.bannedResponses, textsim.Tokens(response))
	}
	for _, phrase := range banned.Phrases {
		if phrase != "" {
			f.bannedPhrases = append(f.bannedPhrases, strings.ToLower(phrase))
		}
	}
	return f
}

// OwnPriorTurns returns the normalized tokens of the responder's earlier
// turns: every other history entry counting back from the one before the
// context turn, in chronological order.
func OwnPriorTurns(history []string) [][]string {
	var turns [][]string
	for i := len(history) - 2; i >= 0; i -= 2 {
		turns = append(turns, textsim.Tokens(history[i]))
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}

// Check returns the first rule the candidate violates, or RejectNone.
// ownTurns is the result of OwnPriorTurns for the current history.
func (f *Filter) Check(candidate string, ownTurns [][]string) Rejection {
	tokens := textsim.Tokens(candidate)
	raw := strings.ToLower(candidate)

	for _, banned := range f.bannedResponses {
		if textsim.Ratio(banned, tokens) > f.config.BannedResponseThreshold {
			return RejectBannedResponse
		}
	}

	window := tokens
	if len(window) > f.config.GreetingWindow {
		window = window[:f.config.GreetingWindow]
	}
	if containsAny(window, f.greetings) {
		return RejectGreeting
	}

	if containsAny(tokens, f.bannedWords) {
		return RejectBannedWord
	}

	if strings.Contains(raw, "?") && containsAny(tokens, f.questionWords) {
		return RejectQuestionWord
	}

	for _, phrase := range f.bannedPhrases {
		if strings.Contains(raw, phrase) {
			return RejectBannedPhrase
		}
	}

	for _, token := range tokens {
		if len(token) > f.config.MaxTokenLength {
			return RejectLongToken
		}
	}

	for _, turn := range ownTurns {
		if textsim.Ratio(turn, tokens) > f.config.RepetitionThreshold {
			return RejectSelfRepetition
		}
	}

	return RejectNone
}

// Allowed reports whether the candidate passes every rule.
func (f *Filter) Allowed(candidate string, ownTurns [][]string) bool {
	return f.Check(candidate, ownTurns) == RejectNone
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func containsAny(tokens []string, set map[string]struct{}) bool {
	for _, token := range tokens {
		if _, ok := set[token]; ok {
			return true
		}
	}
	return false
}
