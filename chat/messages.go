// Copyright 2026 Aldeia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// ClarificationMessage is the reply sent when a message is too ambiguous to
// answer. The handoff policy recognizes clarifications by their wording, so
// this text must keep its "not quite sure" phrasing.
const ClarificationMessage = "I'd love to help you, but I'm not quite sure what you're asking. " +
	"Could you please provide more details or rephrase your question? " +
	"I'm here to assist with fire recovery information, permits, debris removal, rebuilding processes, and more."

// UngroundedMessage is the reply sent when no indexed document is close
// enough to answer from.
const UngroundedMessage = "I'm sorry, but I couldn't find specific information about that in our official documents. " +
	"This could be because the information isn't available yet, or you might want to try rephrasing your question. " +
	"I'm here to help with fire recovery topics like debris removal, rebuilding permits, inspections, and recovery resources."

// InternalErrorMessage is the generic user-facing reply for unexpected
// failures inside a turn.
const InternalErrorMessage = "I apologize, but something went wrong on my end. " +
	"Please try again, and if the problem persists, you may want to contact support directly."

// NotReadyMessage is returned while the embedding backend is still warming up.
const NotReadyMessage = "I apologize, but my knowledge base is still loading. Please try again in a moment."

// biasBanner prefixes replies to messages that carried loaded language.
const biasBanner = "⚠️ Bias Warning: This response may contain biased language or assumptions."

// greetings is the pool of opening lines for a new conversation.
var greetings = []string{
	"Hello! I'm Aldeia Advisor, your friendly guide through the fire recovery process. How can I help you today?",
	"Welcome! I'm here to support you with information about fire recovery in LA County. What would you like to know?",
	"Hi there! I'm Aldeia Advisor, ready to help you navigate the recovery process. What questions do you have?",
	"Greetings! I'm your personal assistant for fire recovery information. How may I assist you today?",
}

// clarificationRule maps a message pattern to the follow-up options offered
// alongside a clarification reply. Rules are checked in order.
type clarificationRule struct {
	pattern *regexp.Regexp
	options []string
}

var clarificationRules = []clarificationRule{
	{regexp.MustCompile(`permit`), []string{"Debris removal permit", "Rebuilding permit", "Other permit"}},
	{regexp.MustCompile(`support|help`), []string{"Emotional support", "Financial support", "Legal support"}},
	{regexp.MustCompile(`status|progress|update`), []string{"Debris removal status", "Rebuilding status", "Permit status"}},
	{regexp.MustCompile(`application|form|paperwork`), []string{"Debris removal application", "Rebuilding application", "Other application"}},
}

var genericClarificationOptions = []string{
	"Can you clarify your question?",
	"Can you provide more details?",
	"Other",
}

// notificationRule maps a trigger substring to a proactive notice. Rules are
// checked in order; county triggers also match the page context.
type notificationRule struct {
	trigger      string
	checkContext bool
	notice       string
}

var notificationRules = []notificationRule{
	{"pasadena", true, "Pasadena County: New debris removal deadline is April 30, 2025."},
	{"la county", true, "LA County: Opt-out applications for debris removal close May 15, 2025."},
	{"deadline", false, "Reminder: Check your local county website for the latest fire recovery deadlines."},
}

// FormatResponse renders the final reply text: the answer, a source
// citation, and a bias banner when the incoming message carried loaded
// language.
func FormatResponse(answer, source string, bias bool) string {
	response := answer + "\n\nSource: " + source
	if bias {
		response = biasBanner + "\n\n" + response
	}
	return response
}

// ClarificationOptions returns the follow-up choices to present with a
// clarification reply, tailored to the message where a rule matches.
func ClarificationOptions(message string) []string {
	msg := strings.ToLower(message)
	for _, rule := range clarificationRules {
		if rule.pattern.MatchString(msg) {
			return rule.options
		}
	}
	return genericClarificationOptions
}

// ProactiveNotification returns a county deadline notice relevant to the
// message or page context, or "" when none applies.
func ProactiveNotification(message, pageContext string) string {
	msg := strings.ToLower(message)
	ctx := strings.ToLower(pageContext)
	for _, rule := range notificationRules {
		if strings.Contains(msg, rule.trigger) {
			return rule.notice
		}
		if rule.checkContext && strings.Contains(ctx, rule.trigger) {
			return rule.notice
		}
	}
	return ""
}

// personalizedGreeting builds the opening line, preferring the user's name
// and mentioning the page they came from when known.
func personalizedGreeting(name, pageContext string, pick func(n int) int) string {
	if name != "" {
		return fmt.Sprintf("Hello, %s! I'm Aldeia Advisor, your friendly guide through the fire recovery process. How can I help you today?", name)
	}
	greeting := greetings[pick(len(greetings))]
	if pageContext != "" {
		return fmt.Sprintf("%s I can see you're looking at information about %s. I'm here to help clarify any questions you might have.", greeting, pageContext)
	}
	return greeting
}
