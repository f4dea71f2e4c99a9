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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aldeia/advisor/auditlog"
	"github.com/aldeia/advisor/chat"
	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/retrieval"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// recordError appends a request failure to the error audit log.
func (s *Server) recordError(r *http.Request, cause any) {
	if s.errorLog == nil {
		return
	}
	entry := map[string]string{
		"url":   r.URL.String(),
		"error": fmt.Sprint(cause),
	}
	if err := s.errorLog.Append(entry); err != nil {
		s.logger.Warn("failed to write error log", "err", err)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"response":    chat.NotReadyMessage,
			"confidence":  0,
			"uncertainty": true,
		})
		return
	}

	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	reply, err := s.engine.HandleTurn(r.Context(), req)
	if err != nil {
		s.logger.Error("chat turn failed", "err", err)
		s.recordError(r, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"response": chat.InternalErrorMessage,
		})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Embedding backend not ready"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	query := core.SanitizeInput(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing query"})
		return
	}

	result, err := s.ranker.Retrieve(r.Context(), query, query, retrieval.ModeSearch)
	if err != nil {
		s.logger.Error("search failed", "err", err)
		s.recordError(r, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches":       chat.MatchViews(result.Matches),
		"grounded":      result.Grounded,
		"hallucination": result.Hallucination,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.ready.Load(),
	})
}

func (s *Server) handleBiasLogs(w http.ResponseWriter, r *http.Request) {
	if s.biasLog == nil {
		http.NotFound(w, r)
		return
	}
	entries, err := s.biasLog.Tail(auditlog.DefaultTailLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read bias/fairness logs."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		http.NotFound(w, r)
		return
	}
	summary, err := s.analytics.Summary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch analytics"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		http.NotFound(w, r)
		return
	}
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch users"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		http.NotFound(w, r)
		return
	}
	sources, err := s.index.Sources(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch documents"})
		return
	}
	type document struct {
		Name    string `json:"name"`
		Indexed bool   `json:"indexed"`
	}
	documents := make([]document, len(sources))
	for i, source := range sources {
		documents[i] = document{Name: source, Indexed: true}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		http.NotFound(w, r)
		return
	}
	stats, err := s.pipeline.Reindex(r.Context(), s.docDirs...)
	if err != nil {
		s.logger.Error("reindex failed", "err", err)
		s.recordError(r, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to trigger reindexing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Document reindexing completed",
		"result":  stats,
	})
}
