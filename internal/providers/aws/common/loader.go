package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// AWSClientProvider hands out service clients bound to an (account, region)
// pair. It is the sole entry point for AWS configuration management across
// the provider layer.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// BaseClients returns clients built from the management identity's own
	// credential chain, used for caller identity, the account directory, and
	// role assumption.
	BaseClients() *ClientSet

	// CallerAccount resolves the management identity's own account via STS.
	CallerAccount(ctx context.Context) (models.Account, error)

	// ClientsFor returns clients scoped to region. When creds is non-nil the
	// clients use those brokered credentials; otherwise they fall back to the
	// management identity. The "global" pseudo-region is mapped to us-east-1.
	ClientsFor(region string, creds *aws.Credentials) *ClientSet
}

// DefaultAWSClientProvider is the production AWSClientProvider. It loads the
// management identity from the standard AWS credential chain once at startup
// and derives per-task configurations from it.
//
// Inject a custom ClientFactory via NewDefaultAWSClientProviderWithFactory to
// replace real SDK clients with mocks in unit tests.
type DefaultAWSClientProvider struct {
	base    aws.Config
	factory ClientFactory
}

// NewDefaultAWSClientProvider loads the default credential chain and returns
// a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider(ctx context.Context) (*DefaultAWSClientProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	// Fall back to us-east-1 when the environment has no region configured so
	// that all SDK clients can be constructed successfully.
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &DefaultAWSClientProvider{base: cfg, factory: NewClientSet}, nil
}

// NewDefaultAWSClientProviderWithFactory returns a provider over cfg that
// uses f to create its ClientSets. Pass a mock factory in tests.
func NewDefaultAWSClientProviderWithFactory(cfg aws.Config, f ClientFactory) *DefaultAWSClientProvider {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &DefaultAWSClientProvider{base: cfg, factory: f}
}

// BaseClients implements AWSClientProvider.
func (p *DefaultAWSClientProvider) BaseClients() *ClientSet {
	return p.factory(p.base)
}

// CallerAccount resolves the management identity's own account via STS
// GetCallerIdentity. The returned account carries no role ARN: collection
// against it uses the management credentials directly, without brokering.
func (p *DefaultAWSClientProvider) CallerAccount(ctx context.Context) (models.Account, error) {
	out, err := p.BaseClients().STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return models.Account{}, fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return models.Account{}, fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return models.Account{
		AccountID:   aws.ToString(out.Account),
		AccountName: "current account",
	}, nil
}

// ClientsFor implements AWSClientProvider.
func (p *DefaultAWSClientProvider) ClientsFor(region string, creds *aws.Credentials) *ClientSet {
	cfg := p.base
	// Global services (IAM, S3 listing) have no regional endpoint of their
	// own; us-east-1 is the canonical region for their clients.
	if region == models.GlobalRegion {
		cfg.Region = "us-east-1"
	} else if region != "" {
		cfg.Region = region
	}
	if creds != nil {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
		)
	}
	return p.factory(cfg)
}
