package classify

import (
	"strings"

	"github.com/aldeia/advisor/core"
)

// Minimum word counts below which a message is treated as too short to carry
// a clear intent, or too short to excuse vague filler terms.
const (
	minIntentWords = 3
	minVagueWords  = 6
)

// Classify runs intent, bias, and ambiguity detection over a raw message.
func Classify(message string) core.ClassificationResult {
	intent := ClassifyIntent(message)
	return core.ClassificationResult{
		Intent:    intent,
		Bias:      DetectBias(message),
		Ambiguous: DetectAmbiguity(message, intent),
	}
}

// ClassifyIntent tests the message against the ordered intent rules and
// returns the first match. Messages with fewer than three words classify as
// ambiguous; everything else defaults to information.
func ClassifyIntent(message string) core.Intent {
	msg := strings.ToLower(message)
	for _, rule := range intentRules {
		if rule.pattern.MatchString(msg) {
			return rule.intent
		}
	}
	if wordCount(message) < minIntentWords {
		return core.IntentAmbiguous
	}
	return core.IntentInformation
}

// DetectBias reports whether the message contains any term from the bias
// vocabulary. The test is case-insensitive substring matching.
func DetectBias(message string) bool {
	msg := strings.ToLower(message)
	for _, word := range biasVocabulary {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}

// DetectAmbiguity reports whether a message needs clarification before
// retrieval. A message is ambiguous when its intent is ambiguous, it is
// shorter than three words, it matches more than one distinct topic-conflict
// pattern, or it leans on vague filler terms while being under six words.
func DetectAmbiguity(message string, intent core.Intent) bool {
	if intent == core.IntentAmbiguous {
		return true
	}
	if wordCount(message) < minIntentWords {
		return true
	}
	msg := strings.ToLower(message)
	matches := 0
	for _, pattern := range topicConflictPatterns {
		if pattern.MatchString(msg) {
			matches++
		}
	}
	if matches > 1 {
		return true
	}
	if vagueTerms.MatchString(msg) && wordCount(message) < minVagueWords {
		return true
	}
	return false
}

func wordCount(message string) int {
	return len(strings.Fields(strings.TrimSpace(message)))
}
