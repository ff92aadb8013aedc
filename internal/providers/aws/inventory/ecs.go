package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ecssvc "github.com/aws/aws-sdk-go-v2/service/ecs"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// describeClustersBatch is the DescribeClusters input limit.
const describeClustersBatch = 100

// ECSCollector lists ECS clusters and describes them in batches.
type ECSCollector struct{}

func (c *ECSCollector) Service() models.Service { return models.ServiceECS }

func (c *ECSCollector) Global() bool { return false }

func (c *ECSCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := ecssvc.NewListClustersPaginator(clients.ECS, &ecssvc.ListClustersInput{})

	var arns []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListClusters page in %s: %w", region, err)
		}
		arns = append(arns, page.ClusterArns...)
	}

	var resources []models.Resource
	for start := 0; start < len(arns); start += describeClustersBatch {
		end := start + describeClustersBatch
		if end > len(arns) {
			end = len(arns)
		}
		out, err := clients.ECS.DescribeClusters(ctx, &ecssvc.DescribeClustersInput{
			Clusters: arns[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeClusters in %s: %w", region, err)
		}
		for _, cluster := range out.Clusters {
			r := newResource(models.ServiceECS, accountID, region)
			r["clusterName"] = aws.ToString(cluster.ClusterName)
			r["clusterArn"] = aws.ToString(cluster.ClusterArn)
			r["status"] = aws.ToString(cluster.Status)
			r["runningTasksCount"] = cluster.RunningTasksCount
			r["activeServicesCount"] = cluster.ActiveServicesCount
			r["registeredInstancesCount"] = cluster.RegisteredContainerInstancesCount
			resources = append(resources, r)
		}
	}
	return resources, nil
}
