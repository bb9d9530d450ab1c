package models

import "github.com/ruthenian8/dream/internal/textsim"

// BannedContent holds the static denylists applied to candidate responses.
type BannedContent struct {
	Responses         []string `json:"banned_responses"`           // normalized full responses
	Phrases           []string `json:"banned_phrases"`             // substrings of the raw candidate
	Words             []string `json:"banned_words"`               // normalized tokens
	WordsForQuestions []string `json:"banned_words_for_questions"` // tokens banned only in questions
}

// NewBannedContent builds the denylists, normalizing full responses so they
// compare against normalized candidates.
func NewBannedContent(responses, phrases, words, wordsForQuestions []string) BannedContent {
	normalized := make([]string, 0, len(responses))
	for _, r := range responses {
		if clean := textsim.ClearText(r); clean != "" {
			normalized = append(normalized, clean)
		}
	}
	return BannedContent{
		Responses:         normalized,
		Phrases:           phrases,
		Words:             words,
		WordsForQuestions: wordsForQuestions,
	}
}

// Sizes reports the number of entries in each list, keyed by list name.
func (bc BannedContent) Sizes() map[string]int {
	return map[string]int{
		"banned_responses":           len(bc.Responses),
		"banned_phrases":             len(bc.Phrases),
		"banned_words":               len(bc.Words),
		"banned_words_for_questions": len(bc.WordsForQuestions),
	}
}
