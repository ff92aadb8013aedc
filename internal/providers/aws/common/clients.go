package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ecssvc "github.com/aws/aws-sdk-go-v2/service/ecs"
	ekssvc "github.com/aws/aws-sdk-go-v2/service/eks"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project. Using
// narrow interfaces instead of the full SDK clients makes mocking in unit
// tests trivial: create a struct that satisfies the interface and return
// canned data. The listed describe/list methods also satisfy the SDK v2
// paginator API client interfaces, so collectors can page with the standard
// paginators.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the broker and resolver.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)

	AssumeRole(
		ctx context.Context,
		params *sts.AssumeRoleInput,
		optFns ...func(*sts.Options),
	) (*sts.AssumeRoleOutput, error)
}

// OrganizationsClient covers the account directory lookup. Satisfies
// organizations.ListAccountsAPIClient for the SDK v2 paginator.
type OrganizationsClient interface {
	ListAccounts(
		ctx context.Context,
		params *organizations.ListAccountsInput,
		optFns ...func(*organizations.Options),
	) (*organizations.ListAccountsOutput, error)
}

// EC2Client covers the EC2 operations used for instance and VPC inventory.
type EC2Client interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2svc.DescribeInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstancesOutput, error)

	DescribeVpcs(
		ctx context.Context,
		params *ec2svc.DescribeVpcsInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeVpcsOutput, error)
}

// S3Client covers bucket listing plus the per-bucket calls needed to derive
// the public-access and encryption flags.
type S3Client interface {
	ListBuckets(
		ctx context.Context,
		params *s3svc.ListBucketsInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.ListBucketsOutput, error)

	GetBucketPolicyStatus(
		ctx context.Context,
		params *s3svc.GetBucketPolicyStatusInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.GetBucketPolicyStatusOutput, error)

	GetBucketAcl(
		ctx context.Context,
		params *s3svc.GetBucketAclInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.GetBucketAclOutput, error)

	GetPublicAccessBlock(
		ctx context.Context,
		params *s3svc.GetPublicAccessBlockInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.GetPublicAccessBlockOutput, error)

	GetBucketEncryption(
		ctx context.Context,
		params *s3svc.GetBucketEncryptionInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.GetBucketEncryptionOutput, error)
}

// RDSClient covers the RDS operations used for database inventory.
// Satisfies rds.DescribeDBInstancesAPIClient for the SDK v2 paginator.
type RDSClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)
}

// DynamoDBClient covers table listing and description.
type DynamoDBClient interface {
	ListTables(
		ctx context.Context,
		params *dynamodb.ListTablesInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.ListTablesOutput, error)

	DescribeTable(
		ctx context.Context,
		params *dynamodb.DescribeTableInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)
}

// IAMClient covers the IAM operations used for user and role inventory.
type IAMClient interface {
	ListUsers(
		ctx context.Context,
		params *iamsvc.ListUsersInput,
		optFns ...func(*iamsvc.Options),
	) (*iamsvc.ListUsersOutput, error)

	ListRoles(
		ctx context.Context,
		params *iamsvc.ListRolesInput,
		optFns ...func(*iamsvc.Options),
	) (*iamsvc.ListRolesOutput, error)

	ListMFADevices(
		ctx context.Context,
		params *iamsvc.ListMFADevicesInput,
		optFns ...func(*iamsvc.Options),
	) (*iamsvc.ListMFADevicesOutput, error)
}

// EKSClient covers cluster listing and description.
type EKSClient interface {
	ListClusters(
		ctx context.Context,
		params *ekssvc.ListClustersInput,
		optFns ...func(*ekssvc.Options),
	) (*ekssvc.ListClustersOutput, error)

	DescribeCluster(
		ctx context.Context,
		params *ekssvc.DescribeClusterInput,
		optFns ...func(*ekssvc.Options),
	) (*ekssvc.DescribeClusterOutput, error)
}

// ECSClient covers cluster listing and description.
type ECSClient interface {
	ListClusters(
		ctx context.Context,
		params *ecssvc.ListClustersInput,
		optFns ...func(*ecssvc.Options),
	) (*ecssvc.ListClustersOutput, error)

	DescribeClusters(
		ctx context.Context,
		params *ecssvc.DescribeClustersInput,
		optFns ...func(*ecssvc.Options),
	) (*ecssvc.DescribeClustersOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds fully initialised AWS service clients bound to one
// (account, region) pair. All fields are interfaces so they can be replaced
// with mocks in tests without importing the AWS SDK in test files.
type ClientSet struct {
	STS           STSClient
	Organizations OrganizationsClient
	EC2           EC2Client
	S3            S3Client
	RDS           RDSClient
	DynamoDB      DynamoDBClient
	IAM           IAMClient
	EKS           EKSClient
	ECS           ECSClient
}

// ClientFactory creates a ClientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the production ClientFactory. IAM and Organizations are
// global services; their endpoints resolve regardless of cfg.Region, so no
// region override is needed here. The "global" pseudo-region is mapped to a
// concrete region before this factory runs.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		STS:           sts.NewFromConfig(cfg),
		Organizations: organizations.NewFromConfig(cfg),
		EC2:           ec2svc.NewFromConfig(cfg),
		S3:            s3svc.NewFromConfig(cfg),
		RDS:           rds.NewFromConfig(cfg),
		DynamoDB:      dynamodb.NewFromConfig(cfg),
		IAM:           iamsvc.NewFromConfig(cfg),
		EKS:           ekssvc.NewFromConfig(cfg),
		ECS:           ecssvc.NewFromConfig(cfg),
	}
}
