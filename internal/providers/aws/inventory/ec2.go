package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// EC2Collector lists EC2 instances. An instance is flagged publicly
// accessible when it carries a public IP address.
type EC2Collector struct{}

func (c *EC2Collector) Service() models.Service { return models.ServiceEC2 }

func (c *EC2Collector) Global() bool { return false }

func (c *EC2Collector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := ec2svc.NewDescribeInstancesPaginator(clients.EC2, &ec2svc.DescribeInstancesInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstances page in %s: %w", region, err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				resources = append(resources, toInstanceResource(inst, region, accountID))
			}
		}
	}
	return resources, nil
}

func toInstanceResource(inst ec2types.Instance, region, accountID string) models.Resource {
	r := newResource(models.ServiceEC2, accountID, region)
	r["instanceId"] = aws.ToString(inst.InstanceId)
	r["instanceType"] = string(inst.InstanceType)
	if inst.State != nil {
		r["state"] = string(inst.State.Name)
	}
	if inst.LaunchTime != nil {
		r["launchTime"] = inst.LaunchTime.UTC().Format(time.RFC3339)
	}
	if ip := aws.ToString(inst.PrivateIpAddress); ip != "" {
		r["privateIp"] = ip
	}
	publicIP := aws.ToString(inst.PublicIpAddress)
	if publicIP != "" {
		r["publicIp"] = publicIP
	}
	r["publiclyAccessible"] = publicIP != ""
	if tags := ec2TagMap(inst.Tags); len(tags) > 0 {
		r["tags"] = tags
	}
	return r
}

// ec2TagMap converts EC2 SDK tags to a plain string map. Shared with the VPC
// collector, which uses the same tag type.
func ec2TagMap(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil && t.Value != nil {
			m[*t.Key] = *t.Value
		}
	}
	return m
}
