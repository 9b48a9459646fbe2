package normalize

import "strings"

// MatchTopics reports whether any topic occurs in text, ignoring case.
// Blank topics never match.
func MatchTopics(text string, topics []string) bool {
	lower := strings.ToLower(text)
	for _, topic := range topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		if strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}
