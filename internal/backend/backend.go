// Package backend opens the storage and inference adapters that serve one
// settings snapshot.
package backend

import (
	"context"

	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/storage"
)

// IdentitySource reports the identity credentials are issued for.
type IdentitySource interface {
	IdentityID(ctx context.Context) (string, error)
}

// Session holds the adapters for one operation. Identity is nil when the
// backend has no credential identity.
type Session struct {
	Objects   storage.ObjectStore
	Index     storage.IndexStore
	Inference inference.Client
	Identity  IdentitySource
}

type Backend interface {
	Name() string
	// Check reports a missing setting this backend needs before Open.
	Check(s config.Settings) error
	Open(ctx context.Context, s config.Settings) (*Session, error)
}
