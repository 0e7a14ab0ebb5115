package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Ensure Bolt implements Store.
var _ Store = (*Bolt)(nil)

// Bolt is a bbolt-backed Store with one bucket per collection.
// bbolt transactions give Update its atomicity. OpenBolt should be used
// to create instances of Bolt.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) the store database at path and
// ensures the well-known collection buckets exist.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range []string{CollectionServers, CollectionChallenges} {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize store buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Get implements Store.
func (b *Bolt) Get(_ context.Context, collection, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, collection)
		if err != nil {
			return err
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set implements Store.
func (b *Bolt) Set(_ context.Context, collection, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, collection)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
}

// GetAll implements Store.
func (b *Bolt) GetAll(_ context.Context, collection string) (map[string][]byte, error) {
	snapshot := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, collection)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			snapshot[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Delete implements Store.
func (b *Bolt) Delete(_ context.Context, collection, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, collection)
		if err != nil {
			return err
		}
		return bucket.Delete([]byte(key))
	})
}

// Update implements Store. fn runs inside a single write transaction.
func (b *Bolt) Update(_ context.Context, collection, key string, fn UpdateFunc) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, collection)
		if err != nil {
			return err
		}

		var current []byte
		if v := bucket.Get([]byte(key)); v != nil {
			current = append([]byte(nil), v...)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), next)
	})
}

func (b *Bolt) bucket(tx *bolt.Tx, collection string) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(collection))
	if bucket == nil {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	return bucket, nil
}
