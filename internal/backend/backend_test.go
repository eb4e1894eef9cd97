package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/awsclient"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/storage"
	"github.com/georgeshao/sdstudio/internal/storage/pebbledb"
	"github.com/georgeshao/sdstudio/internal/storage/sqlite"
)

func TestAWSRequiresRegionAndPool(t *testing.T) {
	b := NewAWS(awsclient.NewFactory(zerolog.Nop()), zerolog.Nop())
	assert.Equal(t, config.BackendAWS, b.Name())

	_, err := b.Open(context.Background(), config.Settings{Region: "us-east-1"})
	assert.True(t, apperrors.IsConfigurationError(err))

	sess, err := b.Open(context.Background(), config.Settings{Region: "us-east-1", IdentityPoolID: "us-east-1:pool"})
	require.NoError(t, err)
	assert.NotNil(t, sess.Identity)
}

func TestLocalSessionScopesBucketAndTable(t *testing.T) {
	dir, err := os.MkdirTemp("", "backend_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	objects, err := pebbledb.New(filepath.Join(dir, "objects"))
	require.NoError(t, err)
	defer objects.Close()
	index, err := sqlite.New(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	defer index.Close()

	b := NewLocal(objects, index, inference.NewHTTP(time.Second))
	assert.Equal(t, config.BackendLocal, b.Name())
	assert.NoError(t, b.Check(config.Settings{}))

	ctx := context.Background()
	sess, err := b.Open(ctx, config.Settings{GenerationsBucket: "b1", GenerationsTable: "t1"})
	require.NoError(t, err)
	assert.Nil(t, sess.Identity)

	require.NoError(t, sess.Objects.PutObject(ctx, "p/g/a.png", []byte("x"), "image/png"))
	other, err := b.Open(ctx, config.Settings{GenerationsBucket: "b2", GenerationsTable: "t1"})
	require.NoError(t, err)
	_, err = other.Objects.GetObject(ctx, "p/g/a.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
