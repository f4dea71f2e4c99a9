package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
	"github.com/dgraph-io/badger/v4"
)

// UserRepository implements storage.UserRepository on BadgerDB.
type UserRepository struct {
	backend *Backend
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) (*UserRepository, error) {
	return &UserRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *UserRepository) Close() error {
	return nil
}

// UpsertUser inserts or updates the record identified by the profile email.
// Existing fields survive a partial update; only fields present in the
// incoming profile overwrite.
func (r *UserRepository) UpsertUser(ctx context.Context, profile core.UserProfile) (*core.UserRecord, error) {
	if err := core.ValidateProfileForPersistence(profile); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	id := core.UserIDFromEmail(profile.Email)
	key := makeUserKey(id)
	var record *core.UserRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()

		item, err := tx.Get(key)
		switch err {
		case nil:
			err = item.Value(func(val []byte) error {
				record, err = storage.UnmarshalUserRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			record.Profile.Merge(profile)
			record.UpdatedAt = now
		case badger.ErrKeyNotFound:
			record = &core.UserRecord{
				Id:        id,
				Profile:   profile,
				CreatedAt: now,
				UpdatedAt: now,
			}
		default:
			return err
		}

		value, err := storage.MarshalUserRecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetUser retrieves a user record by ID.
func (r *UserRepository) GetUser(ctx context.Context, id core.ID) (*core.UserRecord, error) {
	var record *core.UserRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUserKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalUserRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListUsers returns all user records, most recently created first.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*core.UserRecord, error) {
	var records []*core.UserRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalUserRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
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

	slices.SortFunc(records, func(a, b *core.UserRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return records, nil
}
