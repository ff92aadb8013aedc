package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// ACL grantee URIs that make a bucket world-readable.
const (
	allUsersGroupURI  = "http://acs.amazonaws.com/groups/global/AllUsers"
	authUsersGroupURI = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"
)

// S3Collector lists buckets. S3 is global: ListBuckets returns every bucket
// in the account regardless of client region, so the collector runs once per
// account.
//
// A bucket is flagged publicly accessible when its policy status reports
// public, OR its ACL grants the AllUsers/AuthenticatedUsers group, OR its
// public-access-block configuration does not block public ACLs and policies.
// It is flagged unencrypted when no default server-side encryption
// configuration exists.
type S3Collector struct{}

func (c *S3Collector) Service() models.Service { return models.ServiceS3 }

func (c *S3Collector) Global() bool { return true }

func (c *S3Collector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := s3svc.NewListBucketsPaginator(clients.S3, &s3svc.ListBucketsInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListBuckets page: %w", err)
		}
		for _, b := range page.Buckets {
			name := aws.ToString(b.Name)
			r := newResource(models.ServiceS3, accountID, region)
			r["bucketName"] = name
			if b.CreationDate != nil {
				r["creationDate"] = b.CreationDate.UTC().Format(time.RFC3339)
			}
			r["publiclyAccessible"] = isBucketPublic(ctx, clients.S3, name)
			r["unencrypted"] = !hasDefaultEncryption(ctx, clients.S3, name)
			resources = append(resources, r)
		}
	}
	return resources, nil
}

// isBucketPublic applies the fixed combination rule: policy public OR ACL
// group grant OR public-access-block not blocking public ACLs/policies.
// Per-bucket probe failures are treated conservatively as a negative result
// for that probe; a bucket without a policy is not public by policy.
func isBucketPublic(ctx context.Context, client common.S3Client, name string) bool {
	return policyIsPublic(ctx, client, name) ||
		aclGrantsPublic(ctx, client, name) ||
		!publicAccessBlocked(ctx, client, name)
}

func policyIsPublic(ctx context.Context, client common.S3Client, name string) bool {
	out, err := client.GetBucketPolicyStatus(ctx, &s3svc.GetBucketPolicyStatusInput{
		Bucket: aws.String(name),
	})
	// NoSuchBucketPolicy: no policy configured, not public by policy.
	if err != nil || out.PolicyStatus == nil {
		return false
	}
	return aws.ToBool(out.PolicyStatus.IsPublic)
}

func aclGrantsPublic(ctx context.Context, client common.S3Client, name string) bool {
	out, err := client.GetBucketAcl(ctx, &s3svc.GetBucketAclInput{Bucket: aws.String(name)})
	if err != nil {
		return false
	}
	for _, grant := range out.Grants {
		if grant.Grantee == nil {
			continue
		}
		uri := aws.ToString(grant.Grantee.URI)
		if uri == allUsersGroupURI || uri == authUsersGroupURI {
			return true
		}
	}
	return false
}

// publicAccessBlocked reports whether a public-access-block configuration
// exists and blocks both public ACLs and public policies. A missing
// configuration does not block.
func publicAccessBlocked(ctx context.Context, client common.S3Client, name string) bool {
	out, err := client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{
		Bucket: aws.String(name),
	})
	if err != nil || out.PublicAccessBlockConfiguration == nil {
		return false
	}
	cfg := out.PublicAccessBlockConfiguration
	return aws.ToBool(cfg.BlockPublicAcls) && aws.ToBool(cfg.BlockPublicPolicy)
}

// hasDefaultEncryption reports whether GetBucketEncryption returns a valid
// server-side encryption configuration. A missing configuration
// (ServerSideEncryptionConfigurationNotFoundError) or any other error is
// treated as "encryption not configured".
func hasDefaultEncryption(ctx context.Context, client common.S3Client, name string) bool {
	_, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(name),
	})
	return err == nil
}
