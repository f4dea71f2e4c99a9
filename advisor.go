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


package advisor

import (
	"log/slog"

	"github.com/aldeia/advisor/ai"
	"github.com/aldeia/advisor/ai/openai"
	"github.com/aldeia/advisor/chat"
	"github.com/aldeia/advisor/httpapi"
	"github.com/aldeia/advisor/ingest"
	"github.com/aldeia/advisor/retrieval"
	"github.com/aldeia/advisor/session"
	"github.com/aldeia/advisor/storage"
	"github.com/aldeia/advisor/storage/badger"
)

// Advisor bundles the storage backend, embedding provider, and retrieval
// stack behind one handle.
type Advisor struct {
	backend   *badger.Backend
	index     storage.VectorIndex
	users     storage.UserRepository
	analytics storage.AnalyticsRepository
	embedder  ai.Embedder
	sessions  *session.Store
	ranker    *retrieval.Ranker
	logger    *slog.Logger
}

// AdvisorOption configures an Advisor.
type AdvisorOption func(*advisorOptions)

type advisorOptions struct {
	aiConfig    *ai.Config
	maxSessions int
}

// WithAIConfig overrides the embedding backend configuration.
func WithAIConfig(config *ai.Config) AdvisorOption {
	return func(o *advisorOptions) {
		o.aiConfig = config
	}
}

// WithMaxSessions bounds the number of concurrently tracked conversations.
func WithMaxSessions(n int) AdvisorOption {
	return func(o *advisorOptions) {
		o.maxSessions = n
	}
}

// New opens the advisor over a badger store at filePath. An empty filePath
// with inMemory set runs fully in memory, which is what the tests use.
func New(filePath string, inMemory bool, opts ...AdvisorOption) (*Advisor, error) {
	options := &advisorOptions{
		aiConfig:    ai.DefaultConfig(),
		maxSessions: session.DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	index, err := badger.NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	users, err := badger.NewUserRepository(backend)
	if err != nil {
		index.Close()
		backend.Close()
		return nil, err
	}

	analytics, err := badger.NewAnalyticsRepository(backend)
	if err != nil {
		users.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		analytics.Close()
		users.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := session.NewStore(session.WithMaxSessions(options.maxSessions))
	if err != nil {
		analytics.Close()
		users.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	ranker, err := retrieval.NewRanker(index, embedder)
	if err != nil {
		analytics.Close()
		users.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	return &Advisor{
		backend:   backend,
		index:     index,
		users:     users,
		analytics: analytics,
		embedder:  embedder,
		sessions:  sessions,
		ranker:    ranker,
		logger:    slog.Default(),
	}, nil
}

// Close releases repositories and the storage backend.
func (a *Advisor) Close() error {
	if err := a.analytics.Close(); err != nil {
		a.logger.Error("error closing analytics repository", "err", err)
		return err
	}
	if err := a.users.Close(); err != nil {
		a.logger.Error("error closing user repository", "err", err)
		return err
	}
	if err := a.index.Close(); err != nil {
		a.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// VectorIndex exposes the document index.
func (a *Advisor) VectorIndex() storage.VectorIndex {
	return a.index
}

// UserRepository exposes persisted user profiles.
func (a *Advisor) UserRepository() storage.UserRepository {
	return a.users
}

// AnalyticsRepository exposes the event log.
func (a *Advisor) AnalyticsRepository() storage.AnalyticsRepository {
	return a.analytics
}

// Embedder exposes the embedding provider.
func (a *Advisor) Embedder() ai.Embedder {
	return a.embedder
}

// Sessions exposes the conversation store.
func (a *Advisor) Sessions() *session.Store {
	return a.sessions
}

// Ranker exposes the retrieval ranker.
func (a *Advisor) Ranker() *retrieval.Ranker {
	return a.ranker
}

// NewIngestPipeline builds an ingestion pipeline over the advisor's index
// and embedder.
func (a *Advisor) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(a.index, a.embedder, opts...)
}

// NewEngine builds a chat engine wired to the advisor's stores.
func (a *Advisor) NewEngine(opts ...chat.Option) (*chat.Engine, error) {
	allOpts := append([]chat.Option{
		chat.WithUsers(a.users),
		chat.WithAnalytics(a.analytics),
	}, opts...)
	return chat.NewEngine(a.sessions, a.ranker, allOpts...)
}

// NewServer builds the HTTP server around the advisor's engine and stores.
func (a *Advisor) NewServer(addr string, engine *chat.Engine, opts ...httpapi.Option) (*httpapi.Server, error) {
	allOpts := append([]httpapi.Option{
		httpapi.WithIndex(a.index),
		httpapi.WithUsers(a.users),
		httpapi.WithAnalytics(a.analytics),
		httpapi.WithWarmup(a.embedder),
	}, opts...)
	return httpapi.NewServer(addr, engine, a.ranker, allOpts...)
}
