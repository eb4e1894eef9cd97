package awsclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCognito struct {
	getIDCalls    int
	credCalls     int
	expiration    time.Time
	credentialErr error
}

func (f *fakeCognito) GetId(ctx context.Context, in *cognitoidentity.GetIdInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	f.getIDCalls++
	return &cognitoidentity.GetIdOutput{IdentityId: aws.String("us-east-1:" + aws.ToString(in.IdentityPoolId))}, nil
}

func (f *fakeCognito) GetCredentialsForIdentity(ctx context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	f.credCalls++
	if f.credentialErr != nil {
		return nil, f.credentialErr
	}
	return &cognitoidentity.GetCredentialsForIdentityOutput{
		IdentityId: in.IdentityId,
		Credentials: &cognitotypes.Credentials{
			AccessKeyId:  aws.String("AKIA"),
			SecretKey:    aws.String("secret"),
			SessionToken: aws.String("token"),
			Expiration:   aws.Time(f.expiration),
		},
	}, nil
}

func TestCognitoProviderRetrieve(t *testing.T) {
	fake := &fakeCognito{expiration: time.Now().Add(time.Hour)}
	p := NewCognitoProvider(fake, "pool-1")

	creds, err := p.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
	assert.Equal(t, "token", creds.SessionToken)
	assert.True(t, creds.CanExpire)

	id, err := p.IdentityID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "us-east-1:pool-1", id)
	assert.Equal(t, 1, fake.getIDCalls)
}

func TestCredentialsCacheReusesCredentials(t *testing.T) {
	fake := &fakeCognito{expiration: time.Now().Add(time.Hour)}
	cache := aws.NewCredentialsCache(NewCognitoProvider(fake, "pool-1"))

	for i := 0; i < 3; i++ {
		_, err := cache.Retrieve(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.credCalls)
}

func TestCognitoProviderError(t *testing.T) {
	fake := &fakeCognito{credentialErr: errors.New("throttled")}
	_, err := NewCognitoProvider(fake, "pool-1").Retrieve(context.Background())
	assert.Error(t, err)
}

func TestFactoryCachesPerRegionAndPool(t *testing.T) {
	f := NewFactory(zerolog.Nop())
	ctx := context.Background()

	a, err := f.Clients(ctx, "us-east-1", "pool-1")
	require.NoError(t, err)
	b, err := f.Clients(ctx, "us-east-1", "pool-1")
	require.NoError(t, err)
	c, err := f.Clients(ctx, "us-west-2", "pool-1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
