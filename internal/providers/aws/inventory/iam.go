package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// IAMCollector lists IAM users and roles. IAM has no regional partitioning,
// so the collector is global and runs once per account. Users are flagged
// noMfa when they have no MFA device enrolled.
type IAMCollector struct{}

func (c *IAMCollector) Service() models.Service { return models.ServiceIAM }

func (c *IAMCollector) Global() bool { return true }

func (c *IAMCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	users, err := c.collectUsers(ctx, clients.IAM, region, accountID)
	if err != nil {
		return nil, err
	}
	roles, err := c.collectRoles(ctx, clients.IAM, region, accountID)
	if err != nil {
		return nil, err
	}
	return append(users, roles...), nil
}

func (c *IAMCollector) collectUsers(
	ctx context.Context,
	client common.IAMClient,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListUsers page: %w", err)
		}
		for _, u := range page.Users {
			userName := aws.ToString(u.UserName)

			mfa, err := client.ListMFADevices(ctx, &iamsvc.ListMFADevicesInput{
				UserName: aws.String(userName),
			})
			if err != nil {
				return nil, fmt.Errorf("ListMFADevices for %s: %w", userName, err)
			}

			r := newResource(models.ServiceIAM, accountID, region)
			r["userName"] = userName
			r["arn"] = aws.ToString(u.Arn)
			r["identityType"] = "user"
			if u.CreateDate != nil {
				r["createDate"] = u.CreateDate.UTC().Format(time.RFC3339)
			}
			if u.PasswordLastUsed != nil {
				r["passwordLastUsed"] = u.PasswordLastUsed.UTC().Format(time.RFC3339)
			}
			r["noMfa"] = len(mfa.MFADevices) == 0
			resources = append(resources, r)
		}
	}
	return resources, nil
}

func (c *IAMCollector) collectRoles(
	ctx context.Context,
	client common.IAMClient,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := iamsvc.NewListRolesPaginator(client, &iamsvc.ListRolesInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListRoles page: %w", err)
		}
		for _, role := range page.Roles {
			r := newResource(models.ServiceIAM, accountID, region)
			r["roleName"] = aws.ToString(role.RoleName)
			r["arn"] = aws.ToString(role.Arn)
			r["identityType"] = "role"
			if role.CreateDate != nil {
				r["createDate"] = role.CreateDate.UTC().Format(time.RFC3339)
			}
			if path := aws.ToString(role.Path); path != "" {
				r["path"] = path
			}
			resources = append(resources, r)
		}
	}
	return resources, nil
}
