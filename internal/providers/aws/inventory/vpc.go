package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// VPCCollector lists VPCs via the EC2 API.
type VPCCollector struct{}

func (c *VPCCollector) Service() models.Service { return models.ServiceVPC }

func (c *VPCCollector) Global() bool { return false }

func (c *VPCCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := ec2svc.NewDescribeVpcsPaginator(clients.EC2, &ec2svc.DescribeVpcsInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeVpcs page in %s: %w", region, err)
		}
		for _, vpc := range page.Vpcs {
			r := newResource(models.ServiceVPC, accountID, region)
			r["vpcId"] = aws.ToString(vpc.VpcId)
			r["cidrBlock"] = aws.ToString(vpc.CidrBlock)
			r["state"] = string(vpc.State)
			r["isDefault"] = aws.ToBool(vpc.IsDefault)
			if tags := ec2TagMap(vpc.Tags); len(tags) > 0 {
				r["tags"] = tags
			}
			resources = append(resources, r)
		}
	}
	return resources, nil
}
