package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore holds artifact payloads by key.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	// GetObject returns ErrObjectNotFound when the key does not exist.
	GetObject(ctx context.Context, key string) ([]byte, error)
	// DeleteObjects removes keys in bulk and returns how many deletions the
	// store confirmed. Deleting an absent key counts as confirmed.
	DeleteObjects(ctx context.Context, keys []string) (int, error)
}

// IndexStore maps (project, generation) to generation metadata.
type IndexStore interface {
	PutGeneration(ctx context.Context, rec *GenerationRecord) error
	// QueryGenerations returns a project's records ascending by generation
	// id, starting strictly after q.After.
	QueryGenerations(ctx context.Context, q GenerationQuery) (*GenerationPage, error)
	DeleteGeneration(ctx context.Context, projectID, generationID string) error
}
