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

import "github.com/aldeia/advisor/core"

// TurnRequest is one user turn submitted to the engine. All string fields
// are sanitized before use.
type TurnRequest struct {
	Message        string            `json:"message"`
	Context        string            `json:"context"`
	PageURL        string            `json:"pageUrl"`
	IsFirstMessage bool              `json:"isFirstMessage"`
	ConversationID string            `json:"conversationId"`
	UserProfile    *core.UserProfile `json:"userProfile,omitempty"`
}

// MatchView is the wire shape of a retrieval match. Score carries the raw
// distance; lower is more similar.
type MatchView struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// MatchViews converts index matches to their wire shape.
func MatchViews(matches []core.Match) []MatchView {
	views := make([]MatchView, len(matches))
	for i, m := range matches {
		views[i] = MatchView{Text: m.Text, Source: m.Source, ChunkIndex: m.ChunkIndex, Score: m.Distance}
	}
	return views
}

// Reply is the engine's answer to one turn. Fields that only apply to some
// turn outcomes are omitted from the encoding when unset.
type Reply struct {
	Response       string      `json:"response"`
	ConversationID string      `json:"conversationId"`
	Confidence     float64     `json:"confidence"`
	Bias           bool        `json:"bias"`
	Uncertainty    bool        `json:"uncertainty"`
	Grounded       bool        `json:"grounded"`
	Hallucination  bool        `json:"hallucination"`
	Intent         core.Intent `json:"intent"`

	IsGreeting bool `json:"isGreeting,omitempty"`
	Ambiguous  bool `json:"ambiguous,omitempty"`

	Source     string   `json:"source,omitempty"`
	ChunkIndex *int     `json:"chunk_index,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`

	PageContext string      `json:"context,omitempty"`
	History     []core.Turn `json:"history,omitempty"`

	Matches              []MatchView        `json:"matches,omitempty"`
	ClarificationOptions []string           `json:"clarificationOptions,omitempty"`
	Alternatives         []core.Alternative `json:"alternatives,omitempty"`
	Notification         string             `json:"notification,omitempty"`

	HandoffRequired bool   `json:"handoffRequired,omitempty"`
	HandoffMethod   string `json:"handoffMethod,omitempty"`
}
