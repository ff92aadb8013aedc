package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// assumeRoleSessionName identifies brokered sessions in the target account's
// CloudTrail.
const assumeRoleSessionName = "cloud-inventory"

// CredentialBroker exchanges the management identity for temporary
// credentials in one target account.
type CredentialBroker interface {
	// Assume returns temporary credentials for account, or a
	// *models.AssumeRoleError. An empty RoleARN yields nil credentials,
	// meaning "use the management identity"; only the caller's own account,
	// produced by CallerAccount, is resolved without one.
	Assume(ctx context.Context, account models.Account) (*aws.Credentials, error)
}

// STSCredentialBroker is the production CredentialBroker. Each Assume call is
// an independent STS AssumeRole; credentials are never cached across
// requests, so every request re-brokers.
type STSCredentialBroker struct {
	sts        STSClient
	roleName   string
	externalID string
}

// NewSTSCredentialBroker returns a broker that assumes roleName in each
// target account. externalID must match the trust condition configured on
// the target roles; pass "" when the trust policy has no external-ID
// condition.
func NewSTSCredentialBroker(stsClient STSClient, roleName, externalID string) *STSCredentialBroker {
	return &STSCredentialBroker{sts: stsClient, roleName: roleName, externalID: externalID}
}

// Assume implements CredentialBroker. The role ARN is the sole brokering
// signal: every resolver strategy stamps one onto the accounts it produces,
// and only the caller's own account carries none. Account names are display
// data and never influence brokering.
func (b *STSCredentialBroker) Assume(ctx context.Context, account models.Account) (*aws.Credentials, error) {
	roleARN := account.RoleARN
	if roleARN == "" {
		return nil, nil
	}

	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(assumeRoleSessionName),
	}
	if b.externalID != "" {
		input.ExternalId = aws.String(b.externalID)
	}

	out, err := b.sts.AssumeRole(ctx, input)
	if err != nil {
		return nil, &models.AssumeRoleError{
			AccountID: account.AccountID,
			RoleARN:   roleARN,
			Err:       condenseAPIError(err),
		}
	}
	if out.Credentials == nil {
		return nil, &models.AssumeRoleError{
			AccountID: account.AccountID,
			RoleARN:   roleARN,
			Err:       fmt.Errorf("AssumeRole returned no credentials"),
		}
	}

	creds := &aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		CanExpire:       true,
	}
	if out.Credentials.Expiration != nil {
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}

// RoleARNFor builds the cross-account role ARN for an account ID.
func RoleARNFor(accountID, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)
}

// condenseAPIError reduces an SDK error chain to its service error code and
// message when available, keeping task error records readable.
func condenseAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err
}
