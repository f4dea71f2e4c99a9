package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aldeia/advisor/ai/mock"
	"github.com/aldeia/advisor/auditlog"
	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/handoff"
	"github.com/aldeia/advisor/retrieval"
	"github.com/aldeia/advisor/session"
	"github.com/aldeia/advisor/storage"
	badgerstore "github.com/aldeia/advisor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex returns canned matches regardless of the query vector.
type stubIndex struct {
	matches []core.Match
}

func (s *stubIndex) Upsert(_ context.Context, _ string, _ []float32, _, _ string, _ int) error {
	return nil
}

func (s *stubIndex) Query(_ context.Context, _ []float32, k int) ([]core.Match, error) {
	if len(s.matches) > k {
		return s.matches[:k], nil
	}
	return s.matches, nil
}

func (s *stubIndex) Count(_ context.Context) (int, error)        { return len(s.matches), nil }
func (s *stubIndex) Sources(_ context.Context) ([]string, error) { return nil, nil }
func (s *stubIndex) Clear(_ context.Context) error               { return nil }
func (s *stubIndex) Close() error                                { return nil }

// groundedMatches aligns two adjacent chunks from one guide plus one chunk
// from another document, so answers merge and carry an alternative.
func groundedMatches() []core.Match {
	return []core.Match{
		{Text: "Phase one covers hazardous waste assessment.", Source: "debris_guide.pdf", ChunkIndex: 2, Distance: 0.8},
		{Text: "Phase two begins once your parcel is cleared.", Source: "debris_guide.pdf", ChunkIndex: 3, Distance: 1.1},
		{Text: "Permits are issued by the county building office.", Source: "permits.pdf", ChunkIndex: 0, Distance: 1.4},
	}
}

type engineFixture struct {
	engine    *Engine
	sessions  *session.Store
	embedder  *mock.MockEmbedder
	users     storage.UserRepository
	analytics storage.AnalyticsRepository
	biasLog   *auditlog.Log
}

func newFixture(t *testing.T, matches []core.Match, opts ...Option) *engineFixture {
	t.Helper()

	sessions, err := session.NewStore()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	ranker, err := retrieval.NewRanker(&stubIndex{matches: matches}, embedder)
	require.NoError(t, err)

	_, users, analytics, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	biasLog := auditlog.NewLog(filepath.Join(t.TempDir(), "bias_fairness.log"))

	allOpts := append([]Option{
		WithUsers(users),
		WithAnalytics(analytics),
		WithBiasLog(biasLog),
	}, opts...)
	engine, err := NewEngine(sessions, ranker, allOpts...)
	require.NoError(t, err)
	engine.pickGreeting = func(int) int { return 0 }
	engine.newID = func() string { return "conv-test" }

	return &engineFixture{
		engine:    engine,
		sessions:  sessions,
		embedder:  embedder,
		users:     users,
		analytics: analytics,
		biasLog:   biasLog,
	}
}

func TestNewEngine(t *testing.T) {
	sessions, err := session.NewStore()
	require.NoError(t, err)
	ranker, err := retrieval.NewRanker(&stubIndex{}, mock.NewMockEmbedder())
	require.NoError(t, err)

	t.Run("requires sessions", func(t *testing.T) {
		_, err := NewEngine(nil, ranker)
		assert.ErrorIs(t, err, ErrSessionsRequired)
	})

	t.Run("requires ranker", func(t *testing.T) {
		_, err := NewEngine(sessions, nil)
		assert.ErrorIs(t, err, ErrRankerRequired)
	})

	t.Run("minimal wiring", func(t *testing.T) {
		engine, err := NewEngine(sessions, ranker)
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})
}

func TestFirstMessageGreeting(t *testing.T) {
	f := newFixture(t, nil)

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{IsFirstMessage: true})
	require.NoError(t, err)

	assert.Equal(t, greetings[0], reply.Response)
	assert.Equal(t, "conv-test", reply.ConversationID)
	assert.Equal(t, 1.0, reply.Confidence)
	assert.True(t, reply.Grounded)
	assert.False(t, reply.Hallucination)
	assert.Equal(t, core.IntentGreeting, reply.Intent)
	assert.True(t, reply.IsGreeting)
}

func TestFirstMessagePersonalizedGreeting(t *testing.T) {
	f := newFixture(t, nil)

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		IsFirstMessage: true,
		UserProfile:    &core.UserProfile{Name: "Maria"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Hello, Maria!")
}

func TestFirstMessageMentionsPageContext(t *testing.T) {
	f := newFixture(t, nil)

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		IsFirstMessage: true,
		Context:        "debris removal",
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "looking at information about debris removal")
	assert.Equal(t, "debris removal", reply.PageContext)
}

func TestAmbiguousMessageAsksForClarification(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "ok",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.Equal(t, ClarificationMessage, reply.Response)
	assert.Equal(t, clarifyConfidence, reply.Confidence)
	assert.True(t, reply.Ambiguous)
	assert.True(t, reply.Uncertainty)
	assert.False(t, reply.Grounded)
	assert.False(t, reply.Hallucination)
	assert.Equal(t, core.IntentAmbiguous, reply.Intent)
	assert.Equal(t, genericClarificationOptions, reply.ClarificationOptions)

	// The user turn and bot clarification are both on the record.
	require.Len(t, reply.History, 2)
	assert.Equal(t, core.SenderUser, reply.History[0].Sender)
	assert.Equal(t, core.SenderBot, reply.History[1].Sender)
	assert.Equal(t, ClarificationMessage, reply.History[1].Text)
}

func TestAmbiguousPermitMessageOffersPermitOptions(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "permit?",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	assert.True(t, reply.Ambiguous)
	assert.Equal(t, []string{"Debris removal permit", "Rebuilding permit", "Other permit"}, reply.ClarificationOptions)
}

func TestUngroundedReply(t *testing.T) {
	f := newFixture(t, []core.Match{
		{Text: "far away", Source: "doc.pdf", ChunkIndex: 0, Distance: 2.5},
	})

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "What is the debris removal process",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.Equal(t, UngroundedMessage, reply.Response)
	assert.Equal(t, ungroundedConfidence, reply.Confidence)
	assert.True(t, reply.Uncertainty)
	assert.False(t, reply.Grounded)
	assert.True(t, reply.Hallucination)
	assert.Equal(t, core.IntentProcess, reply.Intent)
	assert.Empty(t, reply.Matches)
}

func TestGroundedReply(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "What is the debris removal process",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	// Adjacent chunks from the selected document merge into one answer.
	wantAnswer := "Phase one covers hazardous waste assessment.\n\nPhase two begins once your parcel is cleared."
	assert.Equal(t, wantAnswer+"\n\nSource: debris_guide.pdf", reply.Response)

	assert.InDelta(t, 0.6, reply.Confidence, 1e-9)
	assert.False(t, reply.Uncertainty)
	assert.True(t, reply.Grounded)
	assert.False(t, reply.Hallucination)
	assert.Equal(t, core.IntentProcess, reply.Intent)
	assert.Equal(t, "debris_guide.pdf", reply.Source)
	require.NotNil(t, reply.ChunkIndex)
	assert.Equal(t, 2, *reply.ChunkIndex)
	require.NotNil(t, reply.Distance)
	assert.InDelta(t, 0.8, *reply.Distance, 1e-9)

	require.Len(t, reply.Matches, 3)
	assert.Equal(t, 0.8, reply.Matches[0].Score)

	require.Len(t, reply.Alternatives, 1)
	assert.Equal(t, "permits.pdf", reply.Alternatives[0].Source)

	require.Len(t, reply.History, 2)
	assert.Equal(t, reply.Response, reply.History[1].Text)

	summary, err := f.analytics.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary[core.EventUserMessage])
	assert.Equal(t, 1, summary[core.EventBotResponse])
	assert.Zero(t, summary[core.EventHandoff])
}

func TestLowConfidenceFlagsUncertainty(t *testing.T) {
	f := newFixture(t, []core.Match{
		{Text: "marginal match", Source: "doc.pdf", ChunkIndex: 0, Distance: 1.7},
	})

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "What is the debris removal process",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.True(t, reply.Grounded)
	assert.InDelta(t, 0.15, reply.Confidence, 1e-9)
	assert.True(t, reply.Uncertainty)
}

func TestBiasDetectionBannerAndLog(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "Is debris removal mandatory for owners",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.True(t, reply.Bias)
	assert.True(t, strings.HasPrefix(reply.Response, biasBanner))

	entries, err := f.biasLog.Tail(auditlog.DefaultTailLimit)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Payload), "mandatory")
	assert.Contains(t, string(entries[0].Payload), "debris_guide.pdf")
}

func TestHandoffOnExplicitRequest(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "I want to speak to a human agent",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.True(t, reply.HandoffRequired)
	assert.Equal(t, handoff.Method, reply.HandoffMethod)

	summary, err := f.analytics.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary[core.EventHandoff])
}

func TestProfileWithEmailIsPersisted(t *testing.T) {
	f := newFixture(t, groundedMatches())

	_, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "What is the debris removal process",
		ConversationID: "c1",
		UserProfile:    &core.UserProfile{Name: "Maria", Email: "maria@example.com"},
	})
	require.NoError(t, err)

	record, err := f.users.GetUser(context.Background(), core.UserIDFromEmail("maria@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Maria", record.Profile.Name)
}

func TestInputSanitization(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        `What is the <script>debris</script> removal process`,
		ConversationID: "c1",
	})
	require.NoError(t, err)

	assert.NotContains(t, reply.History[0].Text, "<")
	assert.NotContains(t, reply.History[0].Text, ">")
	assert.Contains(t, reply.History[0].Text, "debris")
}

func TestMintsConversationIDWhenAbsent(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message: "What is the debris removal process",
	})
	require.NoError(t, err)
	assert.Equal(t, "conv-test", reply.ConversationID)
}

func TestNotificationForCountyMention(t *testing.T) {
	f := newFixture(t, groundedMatches())

	reply, err := f.engine.HandleTurn(context.Background(), TurnRequest{
		Message:        "Tell me about pasadena debris rules",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pasadena County: New debris removal deadline is April 30, 2025.", reply.Notification)
}

func TestQueryComposedFromHistory(t *testing.T) {
	f := newFixture(t, groundedMatches())

	var queries []string
	f.embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		queries = append(queries, text)
		return mock.DeterministicVector(text), nil
	}

	ctx := context.Background()
	_, err := f.engine.HandleTurn(ctx, TurnRequest{
		Message:        "What is the debris removal process",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	_, err = f.engine.HandleTurn(ctx, TurnRequest{
		Message:        "And what about the second phase",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	require.Len(t, queries, 2)
	// First turn has no prior history, so the raw message is embedded.
	assert.Equal(t, "What is the debris removal process", queries[0])
	// The follow-up folds recent turns into the query.
	assert.Contains(t, queries[1], " | And what about the second phase")
	assert.Contains(t, queries[1], "user: What is the debris removal process")
}

func TestRepeatedClarificationsTriggerHandoff(t *testing.T) {
	f := newFixture(t, groundedMatches())

	ctx := context.Background()
	// Three ambiguous turns leave three consecutive bot clarifications,
	// but only after the session history rotation drops the user turns.
	for i := 0; i < 3; i++ {
		_, err := f.engine.HandleTurn(ctx, TurnRequest{Message: "ok", ConversationID: "c1"})
		require.NoError(t, err)
	}

	sess := f.sessions.Snapshot("c1")
	count := 0
	for _, turn := range sess.History {
		if turn.Sender == core.SenderBot && strings.Contains(strings.ToLower(turn.Text), handoff.ClarificationSignature) {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 3)
}
