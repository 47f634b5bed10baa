package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketEntries = "entries" // key: big-endian id -> Entry JSON

type BoltDatabase struct {
	storage *bbolt.DB
	path    string
}

// NewBoltDatabase opens the bbolt file at path. The open fails fast when
// another process holds the file lock.
func NewBoltDatabase(path string) (DatabaseService, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %q: %w", ErrStorageUnavailable, path, err)
	}

	return &BoltDatabase{
		storage: instance,
		path:    path,
	}, nil
}

func (b *BoltDatabase) CreateDatabase(_ context.Context) error {
	if err := b.storage.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketEntries))
		return err
	}); err != nil {
		return fmt.Errorf("%w: could not create bucket: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (b *BoltDatabase) DoesDatabaseExist(_ context.Context) bool {
	err := b.storage.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(boltBucketEntries)) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
	return err == nil
}

func (b *BoltDatabase) Close() error {
	return b.storage.Close()
}

func (b *BoltDatabase) CreateEntry(_ context.Context, date string, text string) (*Entry, error) {
	entry := &Entry{
		Date: date,
		Text: text,
	}

	err := b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketEntries))
		if bucket == nil {
			return bbolt.ErrBucketNotFound
		}

		// NextSequence is persisted with the transaction, so ids are never handed out twice.
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = int64(seq)

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put(boltKey(seq), data)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return entry, nil
}

func (b *BoltDatabase) GetAllEntries(_ context.Context) ([]*Entry, error) {
	entries := make([]*Entry, 0)

	err := b.storage.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketEntries))
		if bucket == nil {
			return bbolt.ErrBucketNotFound
		}

		// Keys are big-endian so ForEach walks them in id order.
		return bucket.ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return entries, nil
}

func boltKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
