package backend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/georgeshao/sdstudio/internal/awsclient"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/storage/dynamo"
	"github.com/georgeshao/sdstudio/internal/storage/s3store"
)

// AWS serves sessions from S3, DynamoDB and SageMaker with identity pool
// credentials.
type AWS struct {
	factory *awsclient.Factory
	log     zerolog.Logger
}

var _ Backend = (*AWS)(nil)

func NewAWS(factory *awsclient.Factory, log zerolog.Logger) *AWS {
	return &AWS{factory: factory, log: log}
}

func (b *AWS) Name() string { return config.BackendAWS }

func (b *AWS) Check(s config.Settings) error {
	return s.RequireAWS()
}

func (b *AWS) Open(ctx context.Context, s config.Settings) (*Session, error) {
	if err := b.Check(s); err != nil {
		return nil, err
	}
	clients, err := b.factory.Clients(ctx, s.Region, s.IdentityPoolID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Objects:   s3store.New(clients.S3, s.GenerationsBucket, b.log),
		Index:     dynamo.New(clients.DynamoDB, s.GenerationsTable),
		Inference: inference.NewSageMaker(clients.SageMaker, b.log),
		Identity:  clients.Identity,
	}, nil
}
