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
	"context"
	"log/slog"
	"math/rand"

	"github.com/aldeia/advisor/auditlog"
	"github.com/aldeia/advisor/classify"
	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/handoff"
	"github.com/aldeia/advisor/retrieval"
	"github.com/aldeia/advisor/session"
	"github.com/aldeia/advisor/storage"
	"github.com/google/uuid"
)

// Confidence levels reported for turns that bypass retrieval.
const (
	greetingConfidence   = 1.0
	clarifyConfidence    = 0.3
	ungroundedConfidence = 0.5
)

// uncertaintyThreshold marks retrieval answers that should be flagged as
// uncertain to the user.
const uncertaintyThreshold = 0.4

// BiasRecord is the fairness-log entry written when a turn carried loaded
// language.
type BiasRecord struct {
	UserMessage    string      `json:"userMessage"`
	Response       string      `json:"response"`
	Source         string      `json:"source"`
	ChunkIndex     int         `json:"chunk_index"`
	Distance       float64     `json:"distance"`
	ConversationID string      `json:"conversationId"`
	Intent         core.Intent `json:"intent"`
}

// Engine handles conversational turns end to end.
type Engine struct {
	sessions  *session.Store
	ranker    *retrieval.Ranker
	users     storage.UserRepository
	analytics storage.AnalyticsRepository
	biasLog   *auditlog.Log
	logger    *slog.Logger

	pickGreeting func(n int) int
	newID        func() string
}

// Option configures an Engine.
type Option func(*Engine) error

// WithUsers sets the repository that persists user profiles.
func WithUsers(users storage.UserRepository) Option {
	return func(e *Engine) error {
		e.users = users
		return nil
	}
}

// WithAnalytics sets the repository that records turn events.
func WithAnalytics(analytics storage.AnalyticsRepository) Option {
	return func(e *Engine) error {
		e.analytics = analytics
		return nil
	}
}

// WithBiasLog sets the fairness audit log.
func WithBiasLog(log *auditlog.Log) Option {
	return func(e *Engine) error {
		e.biasLog = log
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a chat engine. The session store and ranker are
// required; user persistence, analytics, and the bias log are optional and
// skipped when absent.
func NewEngine(sessions *session.Store, ranker *retrieval.Ranker, opts ...Option) (*Engine, error) {
	if sessions == nil {
		return nil, ErrSessionsRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	e := &Engine{
		sessions:     sessions,
		ranker:       ranker,
		logger:       slog.Default(),
		pickGreeting: rand.Intn,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// HandleTurn runs one conversational turn. Every reply carries the
// conversation ID, minted here when the request arrived without one.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*Reply, error) {
	message := core.SanitizeInput(req.Message)
	pageContext := core.SanitizeInput(req.Context)
	pageURL := core.SanitizeInput(req.PageURL)

	convID := req.ConversationID
	if convID == "" {
		convID = e.newID()
	}

	if pageContext != "" {
		e.sessions.SetPageContext(convID, pageContext)
	}
	if req.UserProfile != nil && !req.UserProfile.IsZero() {
		e.sessions.MergeProfile(convID, *req.UserProfile)
	}
	if message != "" {
		e.sessions.AppendTurn(convID, core.Turn{Sender: core.SenderUser, Text: message})
	}

	e.logger.Debug("chat turn",
		"conversation", convID, "first", req.IsFirstMessage, "page", pageURL, "len", len(message))

	sess := e.sessions.Snapshot(convID)

	if req.IsFirstMessage {
		return e.greet(convID, sess, pageContext), nil
	}

	classification := classify.Classify(message)

	if classification.Ambiguous {
		return e.clarify(convID, message, classification), nil
	}

	composed := retrieval.ComposeQuery(sess.History, message)
	result, err := e.ranker.Retrieve(ctx, composed, message, retrieval.ModeChat)
	if err != nil {
		return nil, err
	}

	if !result.Grounded {
		return &Reply{
			Response:       UngroundedMessage,
			ConversationID: convID,
			Confidence:     ungroundedConfidence,
			Bias:           classification.Bias,
			Uncertainty:    true,
			Grounded:       false,
			Hallucination:  true,
			Intent:         classification.Intent,
			PageContext:    pageContext,
		}, nil
	}

	return e.answer(ctx, convID, message, pageContext, classification, result, req.UserProfile), nil
}

// greet produces the opening reply for a conversation.
func (e *Engine) greet(convID string, sess session.Session, pageContext string) *Reply {
	return &Reply{
		Response:       personalizedGreeting(sess.Profile.Name, pageContext, e.pickGreeting),
		ConversationID: convID,
		Confidence:     greetingConfidence,
		Grounded:       true,
		Intent:         core.IntentGreeting,
		IsGreeting:     true,
		PageContext:    pageContext,
	}
}

// clarify asks the user to restate an ambiguous message. The clarification
// is recorded as a bot turn so repeated ambiguity can trigger a handoff.
func (e *Engine) clarify(convID, message string, classification core.ClassificationResult) *Reply {
	e.sessions.AppendTurn(convID, core.Turn{Sender: core.SenderBot, Text: ClarificationMessage})
	sess := e.sessions.Snapshot(convID)

	return &Reply{
		Response:             ClarificationMessage,
		ConversationID:       convID,
		Confidence:           clarifyConfidence,
		Bias:                 classification.Bias,
		Uncertainty:          true,
		Grounded:             false,
		Hallucination:        false,
		Intent:               classification.Intent,
		Ambiguous:            true,
		History:              sess.History,
		ClarificationOptions: ClarificationOptions(message),
	}
}

// answer assembles the grounded reply: formatting, fairness logging,
// alternatives, notifications, handoff policy, and analytics.
func (e *Engine) answer(
	ctx context.Context,
	convID, message, pageContext string,
	classification core.ClassificationResult,
	result *core.RetrievalResult,
	profile *core.UserProfile,
) *Reply {
	selected := *result.Selected
	response := FormatResponse(result.Answer, selected.Source, classification.Bias)

	if classification.Bias {
		e.recordBias(BiasRecord{
			UserMessage:    message,
			Response:       response,
			Source:         selected.Source,
			ChunkIndex:     selected.ChunkIndex,
			Distance:       selected.Distance,
			ConversationID: convID,
			Intent:         classification.Intent,
		})
	}

	e.sessions.AppendTurn(convID, core.Turn{Sender: core.SenderBot, Text: response})
	sess := e.sessions.Snapshot(convID)

	notification := ProactiveNotification(message, sess.PageContext)

	handoffRequired := handoff.ShouldHandoff(message, sess.History)

	userID := e.persistProfile(ctx, profile)
	e.recordEvent(ctx, core.AnalyticsEvent{
		UserId: userID, ConversationId: convID,
		EventType: core.EventUserMessage, Message: message,
	})
	e.recordEvent(ctx, core.AnalyticsEvent{
		UserId: userID, ConversationId: convID,
		EventType: core.EventBotResponse, Message: response,
		Meta: map[string]any{
			"intent":       classification.Intent,
			"bias":         classification.Bias,
			"alternatives": len(result.Alternatives),
			"notification": notification,
		},
	})
	if handoffRequired {
		e.recordEvent(ctx, core.AnalyticsEvent{
			UserId: userID, ConversationId: convID,
			EventType: core.EventHandoff, Message: message,
			Meta: map[string]any{"handoffMethod": handoff.Method},
		})
	}

	reply := &Reply{
		Response:       response,
		ConversationID: convID,
		Confidence:     result.Confidence,
		Bias:           classification.Bias,
		Uncertainty:    result.Confidence < uncertaintyThreshold,
		Grounded:       true,
		Hallucination:  false,
		Intent:         classification.Intent,
		Source:         selected.Source,
		ChunkIndex:     &selected.ChunkIndex,
		Distance:       &selected.Distance,
		PageContext:    sess.PageContext,
		History:        sess.History,
		Matches:        MatchViews(result.Matches),
		Alternatives:   result.Alternatives,
		Notification:   notification,
	}
	if handoffRequired {
		reply.HandoffRequired = true
		reply.HandoffMethod = handoff.Method
	}
	return reply
}

// persistProfile upserts the profile when it carries an email and returns
// the stored user ID, or 0 when nothing was persisted.
func (e *Engine) persistProfile(ctx context.Context, profile *core.UserProfile) core.ID {
	if e.users == nil || profile == nil || profile.Email == "" {
		return 0
	}
	record, err := e.users.UpsertUser(ctx, *profile)
	if err != nil {
		e.logger.Warn("failed to persist user profile", "err", err)
		return 0
	}
	return record.Id
}

func (e *Engine) recordEvent(ctx context.Context, event core.AnalyticsEvent) {
	if e.analytics == nil {
		return
	}
	if _, err := e.analytics.AppendEvent(ctx, &event); err != nil {
		e.logger.Warn("failed to record analytics event", "type", event.EventType, "err", err)
	}
}

func (e *Engine) recordBias(record BiasRecord) {
	if e.biasLog == nil {
		return
	}
	if err := e.biasLog.Append(record); err != nil {
		e.logger.Warn("failed to write fairness log", "err", err)
	}
}
