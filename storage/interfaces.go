package storage

import (
	"context"

	"github.com/aldeia/advisor/core"
)

// VectorIndex stores embedded document chunks and answers nearest-neighbor
// queries. Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Upsert stores or replaces a chunk under the given identifier.
	// Identifiers follow the "<documentName>_<chunkIndex>" convention.
	Upsert(ctx context.Context, id string, vector []float32, text, source string, chunkIndex int) error

	// Query returns up to k matches ranked ascending by distance from the
	// query vector. Distance is squared L2; lower means more similar.
	Query(ctx context.Context, vector []float32, k int) ([]core.Match, error)

	// Count reports the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Sources lists the distinct document names present in the index.
	Sources(ctx context.Context) ([]string, error)

	// Clear removes all indexed chunks.
	Clear(ctx context.Context) error

	// Close closes the index and releases resources.
	Close() error
}

// UserRepository persists user profiles keyed by email identity.
type UserRepository interface {
	// UpsertUser inserts or updates the record for the profile's email.
	// Returns core.ErrEmailRequired (wrapped) when the profile has no email.
	UpsertUser(ctx context.Context, profile core.UserProfile) (*core.UserRecord, error)

	// GetUser retrieves a user record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetUser(ctx context.Context, id core.ID) (*core.UserRecord, error)

	// ListUsers returns all user records, most recently created first.
	ListUsers(ctx context.Context) ([]*core.UserRecord, error)

	// Close closes the repository and releases resources.
	Close() error
}

// AnalyticsRepository is an append-only event log for conversation analytics.
type AnalyticsRepository interface {
	// AppendEvent records an event, assigning its ID and timestamp.
	AppendEvent(ctx context.Context, event *core.AnalyticsEvent) (*core.AnalyticsEvent, error)

	// Summary aggregates event counts by event type.
	Summary(ctx context.Context) (map[string]int, error)

	// Close closes the repository and releases resources.
	Close() error
}
