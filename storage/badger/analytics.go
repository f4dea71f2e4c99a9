package badger

import (
	"context"
	"time"

	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
	"github.com/dgraph-io/badger/v4"
)

// AnalyticsRepository implements storage.AnalyticsRepository on BadgerDB.
type AnalyticsRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.AnalyticsRepository = (*AnalyticsRepository)(nil)

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(backend *Backend) (*AnalyticsRepository, error) {
	idSeq, err := backend.GetSequence(analyticsEventSeq)
	if err != nil {
		return nil, err
	}
	return &AnalyticsRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *AnalyticsRepository) Close() error {
	return r.idSeq.Release()
}

// AppendEvent records an event, assigning its ID and timestamp.
func (r *AnalyticsRepository) AppendEvent(ctx context.Context, event *core.AnalyticsEvent) (*core.AnalyticsEvent, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		event.Id = core.ID(nextID)
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		value, err := storage.MarshalAnalyticsEvent(event)
		if err != nil {
			return err
		}
		if err := tx.Set(makeAnalyticsKey(event.Id), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Summary aggregates event counts by event type.
func (r *AnalyticsRepository) Summary(ctx context.Context) (map[string]int, error) {
	summary := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(analyticsPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				event, err := storage.UnmarshalAnalyticsEvent(val)
				if err != nil {
					return err
				}
				summary[event.EventType]++
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
	return summary, nil
}
