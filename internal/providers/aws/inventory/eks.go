package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ekssvc "github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// EKSCollector lists EKS clusters and describes each one. A cluster is
// flagged publicly accessible when its control-plane endpoint allows public
// access.
type EKSCollector struct{}

func (c *EKSCollector) Service() models.Service { return models.ServiceEKS }

func (c *EKSCollector) Global() bool { return false }

func (c *EKSCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := ekssvc.NewListClustersPaginator(clients.EKS, &ekssvc.ListClustersInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListClusters page in %s: %w", region, err)
		}
		for _, name := range page.Clusters {
			out, err := clients.EKS.DescribeCluster(ctx, &ekssvc.DescribeClusterInput{
				Name: aws.String(name),
			})
			if err != nil {
				return nil, fmt.Errorf("DescribeCluster %s in %s: %w", name, region, err)
			}
			cluster := out.Cluster
			if cluster == nil {
				continue
			}

			r := newResource(models.ServiceEKS, accountID, region)
			r["clusterName"] = aws.ToString(cluster.Name)
			r["clusterArn"] = aws.ToString(cluster.Arn)
			r["version"] = aws.ToString(cluster.Version)
			r["status"] = string(cluster.Status)
			public := false
			if cluster.ResourcesVpcConfig != nil {
				public = cluster.ResourcesVpcConfig.EndpointPublicAccess
				if vpcID := aws.ToString(cluster.ResourcesVpcConfig.VpcId); vpcID != "" {
					r["vpcId"] = vpcID
				}
			}
			r["publiclyAccessible"] = public
			resources = append(resources, r)
		}
	}
	return resources, nil
}
