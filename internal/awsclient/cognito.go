package awsclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
)

const credentialsSource = "CognitoIdentityPool"

// CognitoAPI is the subset of the Cognito identity client used here.
type CognitoAPI interface {
	GetId(ctx context.Context, in *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// CognitoProvider exchanges an identity pool's unauthenticated identity for
// temporary credentials. Wrap it in aws.NewCredentialsCache.
type CognitoProvider struct {
	client CognitoAPI
	poolID string

	mu         sync.Mutex
	identityID string
}

var _ aws.CredentialsProvider = (*CognitoProvider)(nil)

func NewCognitoProvider(client CognitoAPI, poolID string) *CognitoProvider {
	return &CognitoProvider{client: client, poolID: poolID}
}

// IdentityID returns the pool identity, creating it on first use.
func (p *CognitoProvider) IdentityID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.identityID != "" {
		return p.identityID, nil
	}
	out, err := p.client.GetId(ctx, &cognitoidentity.GetIdInput{IdentityPoolId: aws.String(p.poolID)})
	if err != nil {
		return "", fmt.Errorf("failed to get identity id: %w", err)
	}
	if aws.ToString(out.IdentityId) == "" {
		return "", errors.New("identity pool returned an empty identity id")
	}
	p.identityID = aws.ToString(out.IdentityId)
	return p.identityID, nil
}

func (p *CognitoProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	identityID, err := p.IdentityID(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}

	out, err := p.client.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(identityID),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("failed to get credentials for identity: %w", err)
	}
	if out.Credentials == nil {
		return aws.Credentials{}, errors.New("identity pool returned no credentials")
	}

	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          credentialsSource,
	}
	if out.Credentials.Expiration != nil {
		creds.CanExpire = true
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}
