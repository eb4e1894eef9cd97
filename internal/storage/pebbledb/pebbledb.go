package pebbledb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/georgeshao/sdstudio/internal/storage"
)

// obj:{bucket}/{key} → payload
const prefixObj = "obj:"

// PebbleStore is a local object store. Buckets are key prefixes.
type PebbleStore struct {
	db *pebble.DB
}

func New(dbPath string) (*PebbleStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

// Bucket returns the object store for one bucket.
func (s *PebbleStore) Bucket(name string) *Bucket {
	return &Bucket{db: s.db, name: name}
}

type Bucket struct {
	db   *pebble.DB
	name string
}

var _ storage.ObjectStore = (*Bucket)(nil)

func (b *Bucket) objKey(key string) []byte {
	return []byte(prefixObj + b.name + "/" + key)
}

// PutObject stores data under key. Content types are not recorded; the
// history reader only needs the bytes.
func (b *Bucket) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.db.Set(b.objKey(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set object: %w", err)
	}
	return nil
}

func (b *Bucket) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, closer, err := b.db.Get(b.objKey(key))
	if err == pebble.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer closer.Close()

	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

// DeleteObjects removes all keys in one synced batch, so either every
// deletion is confirmed or none is.
func (b *Bucket) DeleteObjects(ctx context.Context, keys []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	batch := b.db.NewBatch()
	defer batch.Close()

	for _, key := range keys {
		if err := batch.Delete(b.objKey(key), nil); err != nil {
			return 0, fmt.Errorf("failed to delete object: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return len(keys), nil
}
