package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aldeia/advisor/ai"
	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
)

// Mode distinguishes a conversational turn from a standalone search; the two
// use different result counts and grounding thresholds.
type Mode int

const (
	// ModeChat is a turn inside a conversation.
	ModeChat Mode = iota
	// ModeSearch is a stateless standalone search.
	ModeSearch
)

// Retrieval tuning. The thresholds are compatibility constants; downstream
// confidence scoring assumes these exact values.
const (
	ChatTopK   = 3
	SearchTopK = 5

	ChatDistanceThreshold   = 2.0
	SearchDistanceThreshold = 1.5

	// ChunkMergeWindow is the chunk-index radius around the selected match
	// within which same-source chunks are merged into the answer.
	ChunkMergeWindow = 2
)

// TopK returns the number of nearest neighbors requested for the mode.
func (m Mode) TopK() int {
	if m == ModeSearch {
		return SearchTopK
	}
	return ChatTopK
}

// DistanceThreshold returns the grounding guard threshold for the mode.
func (m Mode) DistanceThreshold() float64 {
	if m == ModeSearch {
		return SearchDistanceThreshold
	}
	return ChatDistanceThreshold
}

// Ranker interprets nearest-neighbor results from the vector index.
type Ranker struct {
	index    storage.VectorIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a new ranker over the given index and embedder.
func NewRanker(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Ranker, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Ranker{
		index:    index,
		embedder: embedder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Retrieve embeds the composed query, fetches the top matches, and ranks
// them. rawMessage is the user's message before composition; it drives the
// keyword rerank.
func (r *Ranker) Retrieve(ctx context.Context, composedQuery, rawMessage string, mode Mode) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, composedQuery, rawMessage, mode, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks for observability.
func (r *Ranker) RetrieveWithMonitor(ctx context.Context, composedQuery, rawMessage string, mode Mode, monitor RetrievalMonitor) (*core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(composedQuery)

	vector, err := r.embedder.EmbedText(ctx, composedQuery)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	matches, err := r.index.Query(ctx, vector, mode.TopK())
	if err != nil {
		r.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterVectorQuery(matches)

	// Grounding guard: without a sufficiently close match there is nothing
	// to rank, and answering anyway would be a hallucination.
	if len(matches) == 0 || matches[0].Distance > mode.DistanceThreshold() {
		nearest := -1.0
		if len(matches) > 0 {
			nearest = matches[0].Distance
		}
		monitor.Ungrounded(nearest)
		r.logger.Debug("ungrounded result", "nearest", nearest, "threshold", mode.DistanceThreshold())
		result := &core.RetrievalResult{
			Matches:       matches,
			Grounded:      false,
			Hallucination: true,
		}
		monitor.Finish(result)
		return result, nil
	}

	confidence := core.Confidence(matches[0].Distance)

	selected, byKeyword := r.selectMatch(matches, rawMessage)
	monitor.AfterKeywordSelect(selected, byKeyword)

	answer, merged := mergeChunks(matches, selected)
	monitor.AfterChunkMerge(merged)

	result := &core.RetrievalResult{
		Matches:      matches,
		Selected:     &selected,
		Answer:       answer,
		Confidence:   confidence,
		Alternatives: collectAlternatives(matches, selected),
		Grounded:     true,
	}
	monitor.Finish(result)
	return result, nil
}

// selectMatch scans matches in distance order and picks the first whose text
// contains every keyword of the raw message. Falls back to the nearest match.
func (r *Ranker) selectMatch(matches []core.Match, rawMessage string) (core.Match, bool) {
	keywords := queryKeywords(rawMessage)
	if len(keywords) > 0 {
		for _, m := range matches {
			if containsAllKeywords(m.Text, keywords) {
				return m, true
			}
		}
	}
	return matches[0], false
}

// mergeChunks concatenates retrieved chunks that share the selected match's
// source and sit within the merge window of its chunk index. Returns the
// answer body and the number of chunks merged.
func mergeChunks(matches []core.Match, selected core.Match) (string, int) {
	var parts []string
	for _, m := range matches {
		if m.Source != selected.Source {
			continue
		}
		delta := m.ChunkIndex - selected.ChunkIndex
		if delta < 0 {
			delta = -delta
		}
		if delta <= ChunkMergeWindow {
			parts = append(parts, m.Text)
		}
	}
	if len(parts) > 1 {
		return strings.Join(parts, "\n\n"), len(parts)
	}
	return selected.Text, 1
}

// collectAlternatives gathers matches from sources other than the selected
// one, deduplicated by source and chunk index.
func collectAlternatives(matches []core.Match, selected core.Match) []core.Alternative {
	var alternatives []core.Alternative
	seen := make(map[string]bool)
	for _, m := range matches {
		if m.Source == selected.Source || m.Text == "" || m.Source == "" {
			continue
		}
		if seen[m.Key()] {
			continue
		}
		seen[m.Key()] = true
		alternatives = append(alternatives, core.Alternative{Answer: m.Text, Source: m.Source})
	}
	return alternatives
}
