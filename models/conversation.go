package models

// ConversationHistory is the chronological list of utterances; the last
// element is the turn being answered.
type ConversationHistory []string

// Context returns the turn being answered, or "" for an empty history.
func (h ConversationHistory) Context() string {
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1]
}

// TopicFlags maps topic names to whether the agent is currently on them.
type TopicFlags map[string]bool

// AnyActive reports whether any of the given topics is flagged true.
func (tf TopicFlags) AnyActive(topics []string) bool {
	for _, topic := range topics {
		if tf[topic] {
			return true
		}
	}
	return false
}

// BatchItem is one conversation to answer.
type BatchItem struct {
	History ConversationHistory
	Topics  TopicFlags
}
