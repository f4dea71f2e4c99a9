package retrieval

import "strings"

// minKeywordLength filters out short connective words when tokenizing the
// raw message for reranking.
const minKeywordLength = 2

// queryKeywords splits the raw message into lowercase words longer than two
// characters.
func queryKeywords(message string) []string {
	words := strings.Fields(strings.ToLower(message))
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) > minKeywordLength {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// containsAllKeywords checks whether every keyword appears in the document
// text. Matching is a case-insensitive substring test.
func containsAllKeywords(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if !strings.Contains(lowered, keyword) {
			return false
		}
	}
	return true
}
