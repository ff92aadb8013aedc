package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// RDSCollector lists RDS database instances. An instance is flagged
// unencrypted when its storage-encryption attribute is false.
type RDSCollector struct{}

func (c *RDSCollector) Service() models.Service { return models.ServiceRDS }

func (c *RDSCollector) Global() bool { return false }

func (c *RDSCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := rds.NewDescribeDBInstancesPaginator(clients.RDS, &rds.DescribeDBInstancesInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeDBInstances page in %s: %w", region, err)
		}
		for _, db := range page.DBInstances {
			r := newResource(models.ServiceRDS, accountID, region)
			r["dbInstanceIdentifier"] = aws.ToString(db.DBInstanceIdentifier)
			r["dbiResourceId"] = aws.ToString(db.DbiResourceId)
			r["engine"] = aws.ToString(db.Engine)
			r["engineVersion"] = aws.ToString(db.EngineVersion)
			r["instanceClass"] = aws.ToString(db.DBInstanceClass)
			r["status"] = aws.ToString(db.DBInstanceStatus)
			r["multiAZ"] = aws.ToBool(db.MultiAZ)
			r["allocatedStorageGB"] = aws.ToInt32(db.AllocatedStorage)
			r["publiclyAccessible"] = aws.ToBool(db.PubliclyAccessible)
			r["unencrypted"] = !aws.ToBool(db.StorageEncrypted)
			resources = append(resources, r)
		}
	}
	return resources, nil
}
