package safety

import "github.com/ruthenian8/dream/internal/textsim"

// DefaultGuardThreshold is the Jaccard similarity above which a turn is
// considered to be one of the trigger phrases.
const DefaultGuardThreshold = 0.9

// DefaultUnanswerablePhrases are turns that ask the agent to lead the
// conversation; a retrieved reply to them is never appropriate.
var DefaultUnanswerablePhrases = []string{
	"let's talk about",
	"what else can you do?",
	"let's talk about books",
}

// Guard detects context turns that must not be answered by retrieval.
type Guard struct {
	triggers  []map[string]struct{}
	threshold float64
}

// NewGuard builds a guard from trigger phrases. A non-positive threshold
// selects DefaultGuardThreshold.
func NewGuard(phrases []string, threshold float64) *Guard {
	if threshold <= 0 {
		threshold = DefaultGuardThreshold
	}
	triggers := make([]map[string]struct{}, 0, len(phrases))
	for _, phrase := range phrases {
		triggers = append(triggers, textsim.BagOfWords(phrase))
	}
	return &Guard{triggers: triggers, threshold: threshold}
}

// IsUnanswerable reports whether the most recent turn of history matches
// any trigger phrase.
func (g *Guard) IsUnanswerable(history []string) bool {
	if len(history) == 0 {
		return false
	}
	last := textsim.BagOfWords(history[len(history)-1])
	for _, trigger := range g.triggers {
		if textsim.Jaccard(last, trigger) > g.threshold {
			return true
		}
	}
	return false
}
