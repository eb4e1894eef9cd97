package awsclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/rs/zerolog"
)

// Clients are the service clients for one region and identity pool. They
// share a credentials cache, so refreshes happen inside the SDK.
type Clients struct {
	S3        *s3.Client
	DynamoDB  *dynamodb.Client
	SageMaker *sagemakerruntime.Client
	Identity  *CognitoProvider
}

type cacheKey struct {
	region string
	poolID string
}

// Factory builds Clients on first use and reuses them afterwards.
type Factory struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[cacheKey]*Clients
}

func NewFactory(log zerolog.Logger) *Factory {
	return &Factory{
		log:     log.With().Str("component", "aws-clients").Logger(),
		clients: make(map[cacheKey]*Clients),
	}
}

func (f *Factory) Clients(ctx context.Context, region, poolID string) (*Clients, error) {
	key := cacheKey{region: region, poolID: poolID}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[key]; ok {
		return c, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// GetId and GetCredentialsForIdentity are unauthenticated calls.
	cognito := cognitoidentity.NewFromConfig(cfg, func(o *cognitoidentity.Options) {
		o.Credentials = aws.AnonymousCredentials{}
	})
	identity := NewCognitoProvider(cognito, poolID)
	cfg.Credentials = aws.NewCredentialsCache(identity)

	c := &Clients{
		S3:        s3.NewFromConfig(cfg),
		DynamoDB:  dynamodb.NewFromConfig(cfg),
		SageMaker: sagemakerruntime.NewFromConfig(cfg),
		Identity:  identity,
	}
	f.clients[key] = c
	f.log.Info().Str("region", region).Msg("aws clients created")
	return c, nil
}
