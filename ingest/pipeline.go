package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/aldeia/advisor/ai"
	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
	"github.com/panjf2000/ants/v2"
)

// documentExtensions are the file types the pipeline will index.
var documentExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Stats summarizes one ingestion run.
type Stats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Failures  int `json:"failures"`
}

// Pipeline orchestrates discovery, chunking, embedding, and indexing of
// recovery documents.
type Pipeline struct {
	index    storage.VectorIndex
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:    index,
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// IndexDirectories discovers documents under the given directories and
// indexes every chunk. Individual document failures are logged and counted
// but do not abort the run.
func (p *Pipeline) IndexDirectories(ctx context.Context, dirs ...string) (*Stats, error) {
	var paths []string
	for _, dir := range dirs {
		found, err := findDocuments(dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	p.logger.Info("discovered documents", "count", len(paths), "dirs", len(dirs))

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats Stats
	)
	for _, path := range paths {
		path := path
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			chunks, err := p.indexDocument(ctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Error("failed to index document", "path", path, "err", err)
				stats.Failures++
				return
			}
			stats.Documents++
			stats.Chunks += chunks
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			stats.Failures++
			mu.Unlock()
			p.logger.Error("failed to submit document", "path", path, "err", err)
		}
	}
	wg.Wait()

	p.logger.Info("ingestion complete",
		"documents", stats.Documents, "chunks", stats.Chunks, "failures", stats.Failures)
	return &stats, nil
}

// Reindex clears the vector index and rebuilds it from the directories.
func (p *Pipeline) Reindex(ctx context.Context, dirs ...string) (*Stats, error) {
	if err := p.index.Clear(ctx); err != nil {
		return nil, err
	}
	return p.IndexDirectories(ctx, dirs...)
}

// indexDocument chunks, embeds, and upserts a single document.
// Returns the number of chunks indexed.
func (p *Pipeline) indexDocument(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	chunks := ChunkDocument(string(data))
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, ErrEmbeddingMismatch
	}

	source := filepath.Base(path)
	for i, chunk := range chunks {
		id := core.ChunkID(source, i)
		if err := p.index.Upsert(ctx, id, vectors[i], chunk, source, i); err != nil {
			return 0, err
		}
	}

	p.logger.Debug("indexed document", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// findDocuments recursively collects indexable files under dir.
func findDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if documentExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
