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


package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aldeia/advisor/ai"
	"github.com/aldeia/advisor/auditlog"
	"github.com/aldeia/advisor/chat"
	"github.com/aldeia/advisor/ingest"
	"github.com/aldeia/advisor/retrieval"
	"github.com/aldeia/advisor/storage"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server serves the chat API.
type Server struct {
	addr   string
	engine *chat.Engine
	ranker *retrieval.Ranker

	index     storage.VectorIndex
	users     storage.UserRepository
	analytics storage.AnalyticsRepository
	biasLog   *auditlog.Log
	errorLog  *auditlog.Log
	pipeline  *ingest.Pipeline
	docDirs   []string
	warmupped ai.Embedder

	ready  atomic.Bool
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithIndex enables the admin document listing.
func WithIndex(index storage.VectorIndex) Option {
	return func(s *Server) error {
		s.index = index
		return nil
	}
}

// WithUsers enables the admin user listing.
func WithUsers(users storage.UserRepository) Option {
	return func(s *Server) error {
		s.users = users
		return nil
	}
}

// WithAnalytics enables the admin analytics summary.
func WithAnalytics(analytics storage.AnalyticsRepository) Option {
	return func(s *Server) error {
		s.analytics = analytics
		return nil
	}
}

// WithBiasLog enables the fairness log endpoint.
func WithBiasLog(log *auditlog.Log) Option {
	return func(s *Server) error {
		s.biasLog = log
		return nil
	}
}

// WithErrorLog records request failures to an audit log.
func WithErrorLog(log *auditlog.Log) Option {
	return func(s *Server) error {
		s.errorLog = log
		return nil
	}
}

// WithPipeline enables the admin reindex endpoint over the given document
// directories.
func WithPipeline(pipeline *ingest.Pipeline, dirs ...string) Option {
	return func(s *Server) error {
		s.pipeline = pipeline
		s.docDirs = dirs
		return nil
	}
}

// WithWarmup gates chat and search behind an embedding backend warmup.
// Without it the server reports ready immediately.
func WithWarmup(embedder ai.Embedder) Option {
	return func(s *Server) error {
		s.warmupped = embedder
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates the HTTP server. The chat engine and ranker are
// required; admin endpoints whose dependency is absent respond 404.
func NewServer(addr string, engine *chat.Engine, ranker *retrieval.Ranker, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	s := &Server{
		addr:   addr,
		engine: engine,
		ranker: ranker,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.warmupped == nil {
		s.ready.Store(true)
	}
	return s, nil
}

// Handler builds the route table wrapped in CORS, logging, and panic
// recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/chat/bias-logs", s.handleBiasLogs)
	mux.HandleFunc("GET /api/chat/admin/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/chat/admin/users", s.handleUsers)
	mux.HandleFunc("GET /api/chat/admin/documents", s.handleDocuments)
	mux.HandleFunc("POST /api/chat/admin/documents/reindex", s.handleReindex)

	return s.corsMiddleware(s.loggingMiddleware(s.recoverMiddleware(mux)))
}

// Start runs the server until ctx is canceled. When a warmup embedder was
// provided, chat and search return 503 until the backend answers a probe.
func (s *Server) Start(ctx context.Context) error {
	if s.warmupped != nil {
		go s.warmup(ctx)
	}

	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	s.logger.Info("advisor server starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) warmup(ctx context.Context) {
	if err := ai.Warmup(ctx, s.warmupped); err != nil {
		s.logger.Error("embedding backend warmup failed", "err", err)
		return
	}
	s.ready.Store(true)
	s.logger.Info("embedding backend ready")
}
