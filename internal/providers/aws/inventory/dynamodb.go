package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// DynamoDBCollector lists tables and describes each one. A table is flagged
// unencrypted when it carries no server-side encryption description
// (AWS-owned-key default).
type DynamoDBCollector struct{}

func (c *DynamoDBCollector) Service() models.Service { return models.ServiceDynamoDB }

func (c *DynamoDBCollector) Global() bool { return false }

func (c *DynamoDBCollector) Collect(
	ctx context.Context,
	clients *common.ClientSet,
	region, accountID string,
) ([]models.Resource, error) {
	paginator := dynamodb.NewListTablesPaginator(clients.DynamoDB, &dynamodb.ListTablesInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListTables page in %s: %w", region, err)
		}
		for _, name := range page.TableNames {
			out, err := clients.DynamoDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(name),
			})
			if err != nil {
				return nil, fmt.Errorf("DescribeTable %s in %s: %w", name, region, err)
			}
			table := out.Table
			if table == nil {
				continue
			}

			r := newResource(models.ServiceDynamoDB, accountID, region)
			r["tableName"] = aws.ToString(table.TableName)
			r["tableArn"] = aws.ToString(table.TableArn)
			r["status"] = string(table.TableStatus)
			r["itemCount"] = aws.ToInt64(table.ItemCount)
			r["sizeBytes"] = aws.ToInt64(table.TableSizeBytes)
			if table.BillingModeSummary != nil {
				r["billingMode"] = string(table.BillingModeSummary.BillingMode)
			}
			r["unencrypted"] = table.SSEDescription == nil
			resources = append(resources, r)
		}
	}
	return resources, nil
}
