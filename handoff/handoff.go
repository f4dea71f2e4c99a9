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


// Package handoff decides when a conversation should escalate to a human.
package handoff

import (
	"regexp"
	"strings"

	"github.com/aldeia/advisor/core"
)

// Method is the single escalation channel in use.
const Method = "email"

// ClarificationSignature marks bot turns that asked for clarification. The
// stalled-conversation check looks for this phrase in recent bot history.
const ClarificationSignature = "not quite sure"

// stalledWindow and stalledCount: among the last stalledWindow history
// entries, at least stalledCount must be bot clarification turns to trigger.
// With a window equal to the count, every inspected entry must qualify; this
// deliberately preserves the strict reading of the rule.
const (
	stalledWindow = 3
	stalledCount  = 3
)

// humanRequestPattern matches explicit asks for a person.
var humanRequestPattern = regexp.MustCompile(`human|agent|contact|real person|talk to|speak to|help`)

// ShouldHandoff reports whether this turn escalates: either the message
// explicitly asks for a human, or the conversation has stalled in repeated
// clarifications.
func ShouldHandoff(message string, history []core.Turn) bool {
	if humanRequestPattern.MatchString(strings.ToLower(message)) {
		return true
	}

	recent := history
	if len(recent) > stalledWindow {
		recent = recent[len(recent)-stalledWindow:]
	}
	clarifications := 0
	for _, turn := range recent {
		if turn.Sender == core.SenderBot && strings.Contains(strings.ToLower(turn.Text), ClarificationSignature) {
			clarifications++
		}
	}
	return clarifications >= stalledCount
}
