package backend

import (
	"context"

	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/storage/pebbledb"
	"github.com/georgeshao/sdstudio/internal/storage/sqlite"
)

// Local serves sessions from on-disk stores and self-hosted HTTP endpoints.
// Catalog endpoint names are URLs.
type Local struct {
	objects   *pebbledb.PebbleStore
	index     *sqlite.SQLiteStore
	inference inference.Client
}

var _ Backend = (*Local)(nil)

func NewLocal(objects *pebbledb.PebbleStore, index *sqlite.SQLiteStore, client inference.Client) *Local {
	return &Local{objects: objects, index: index, inference: client}
}

func (b *Local) Name() string { return config.BackendLocal }

func (b *Local) Check(s config.Settings) error { return nil }

func (b *Local) Open(ctx context.Context, s config.Settings) (*Session, error) {
	return &Session{
		Objects:   b.objects.Bucket(s.GenerationsBucket),
		Index:     b.index.Index(s.GenerationsTable),
		Inference: b.inference,
	}, nil
}
