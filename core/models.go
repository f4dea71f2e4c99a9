package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Sender identifies who produced a conversation turn.
type Sender string

const (
	// SenderUser marks a turn written by the person asking questions.
	SenderUser Sender = "user"
	// SenderBot marks a turn written by the advisor.
	SenderBot Sender = "bot"
)

// Turn is a single message in a conversation. Turns are immutable once
// appended to a session; insertion order is significant, most recent last.
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// UserProfile holds what is known about the person on the other end.
// The email address is the identity key for persistence; a profile without
// one is kept in session state only.
type UserProfile struct {
	Name     string `json:"name,omitempty"`
	County   string `json:"county,omitempty"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language,omitempty"`
}

// Merge overlays other onto p field by field. Only fields present in other
// overwrite; absent fields keep their current values.
func (p *UserProfile) Merge(other UserProfile) {
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.County != "" {
		p.County = other.County
	}
	if other.Email != "" {
		p.Email = other.Email
	}
	if other.Language != "" {
		p.Language = other.Language
	}
}

// IsZero reports whether no profile field is set.
func (p UserProfile) IsZero() bool {
	return p == UserProfile{}
}

// Intent is the classified topic of a user message.
type Intent string

const (
	IntentEmergency        Intent = "emergency"
	IntentStatus           Intent = "status"
	IntentProcess          Intent = "process"
	IntentComparative      Intent = "comparative"
	IntentLocation         Intent = "location"
	IntentLegal            Intent = "legal"
	IntentFinancial        Intent = "financial"
	IntentEmotionalSupport Intent = "emotional_support"
	IntentEligibility      Intent = "eligibility"
	IntentContact          Intent = "contact"
	IntentFeedback         Intent = "feedback"
	IntentAmbiguous        Intent = "ambiguous"
	IntentInformation      Intent = "information"
	IntentGreeting         Intent = "greeting"
)

// ClassificationResult is the output of classifying a single user message.
type ClassificationResult struct {
	Intent    Intent
	Bias      bool
	Ambiguous bool
}

// Match is a single nearest-neighbor hit from the vector index.
// Distance is squared L2 between normalized embeddings; lower is more similar.
type Match struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

// Key returns the index identity of the match, "<source>_<chunkIndex>".
func (m Match) Key() string {
	return ChunkID(m.Source, m.ChunkIndex)
}

// Alternative is a secondary citation drawn from a source other than the
// selected match.
type Alternative struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// RetrievalResult is the ranked interpretation of a nearest-neighbor query.
type RetrievalResult struct {
	Matches       []Match
	Selected      *Match
	Answer        string
	Confidence    float64
	Alternatives  []Alternative
	Grounded      bool
	Hallucination bool
}

// UserRecord is the persisted form of a user profile. The ID is derived
// from the email address, so upserts are idempotent per user.
type UserRecord struct {
	Id        ID          `json:"id"`
	Profile   UserProfile `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserIDFromEmail derives the persistent identity for a profile.
func UserIDFromEmail(email string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(email)))
}

// AnalyticsEvent is one entry in the append-only analytics log.
type AnalyticsEvent struct {
	Id             ID             `json:"id"`
	UserId         ID             `json:"user_id,omitempty"`
	ConversationId string         `json:"conversation_id,omitempty"`
	EventType      string         `json:"event_type"`
	Message        string         `json:"message,omitempty"`
	Meta           map[string]any `json:"meta,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Analytics event types recorded by the chat engine.
const (
	EventUserMessage = "user_message"
	EventBotResponse = "bot_response"
	EventHandoff     = "handoff"
)

// Confidence converts a match distance into a confidence score.
// The mapping is 1 - distance/2, clamped to [0, 1].
func Confidence(distance float64) float64 {
	c := 1 - distance/2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ChunkID builds the vector-index identifier for a document chunk.
func ChunkID(documentName string, chunkIndex int) string {
	return documentName + "_" + strconv.Itoa(chunkIndex)
}
