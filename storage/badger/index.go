package badger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
	"github.com/dgraph-io/badger/v4"
)

// VectorIndex implements storage.VectorIndex on a BadgerDB backend with a
// brute-force scan. Suitable for corpus sizes in the low tens of thousands
// of chunks; distances are squared L2.
type VectorIndex struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a vector index on the given backend.
func NewVectorIndex(backend *Backend) (*VectorIndex, error) {
	return &VectorIndex{
		backend: backend,
		logger:  slog.Default().With("component", "vector-index"),
	}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (x *VectorIndex) Close() error {
	return nil
}

// Upsert stores or replaces a chunk under the given identifier.
func (x *VectorIndex) Upsert(ctx context.Context, id string, vector []float32, text, source string, chunkIndex int) error {
	chunk := &storage.StoredChunk{
		Id:         id,
		Vector:     vector,
		Text:       text,
		Source:     source,
		ChunkIndex: chunkIndex,
	}
	value, err := storage.MarshalChunk(chunk)
	if err != nil {
		return err
	}
	return x.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeChunkKey(id), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Query returns up to k matches, ascending by distance from the query vector.
func (x *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]core.Match, error) {
	if k < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []core.Match
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *storage.StoredChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(chunk.Vector) == 0 {
				continue
			}
			if len(chunk.Vector) != len(vector) {
				x.logger.Warn("skipping chunk with mismatched vector dimension",
					"chunk", chunk.Id, "have", len(chunk.Vector), "want", len(vector))
				continue
			}
			matches = append(matches, core.Match{
				Text:       chunk.Text,
				Source:     chunk.Source,
				ChunkIndex: chunk.ChunkIndex,
				Distance:   squaredL2(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b core.Match) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count reports the number of indexed chunks.
func (x *VectorIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Sources lists the distinct document names present in the index.
func (x *VectorIndex) Sources(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var sources []string
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				if !seen[chunk.Source] {
					seen[chunk.Source] = true
					sources = append(sources, chunk.Source)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	slices.Sort(sources)
	return sources, nil
}

// Clear removes all indexed chunks.
func (x *VectorIndex) Clear(ctx context.Context) error {
	var keys [][]byte
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// squaredL2 calculates the squared Euclidean distance between two vectors.
// For normalized embeddings the result falls in [0, 4].
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
