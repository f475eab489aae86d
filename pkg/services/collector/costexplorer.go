package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/provider"
)

const costExplorerUsageName = "cost-explorer-usage"

var serviceCategories = map[string]string{
	"Amazon Elastic Compute Cloud - Compute": "compute",
	"Amazon Simple Storage Service":          "storage",
	"Amazon Relational Database Service":     "database",
}

// costExplorerUsage is the reference collector implementation: a
// Cost Explorer usage query grouped by service. It doubles as the
// template per-service collectors follow.
type costExplorerUsage struct {
	days int
}

func NewCostExplorerUsage(days int) Collector {
	if days <= 0 {
		days = 30
	}
	return &costExplorerUsage{days: days}
}

func (c *costExplorerUsage) Name() string { return costExplorerUsageName }

func (c *costExplorerUsage) Collect(
	ctx context.Context,
	clients provider.ClientFactory,
	region string,
) (*domain.BatchResult, error) {
	raw, err := clients.GetClient(ctx, provider.ServiceCostExplorer, region)
	if err != nil {
		return nil, err
	}
	client, ok := raw.(*costexplorer.Client)
	if !ok {
		return nil, fmt.Errorf("unexpected client type %T for cost explorer", raw)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -c.days)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		Filter: &types.Expression{
			Not: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:    types.DimensionRecordType,
					Values: []string{"Credit", "Refund"},
				},
			},
		},
		GroupBy: []types.GroupDefinition{
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	}

	result := &domain.BatchResult{
		Costs: domain.CostBreakdown{
			ByService:  make(map[string]float64),
			ByCategory: make(map[string]float64),
		},
	}

	paginationToken := ""
	for {
		if paginationToken != "" {
			input.NextPageToken = aws.String(paginationToken)
		}
		out, err := client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}

		for _, byTime := range out.ResultsByTime {
			for _, group := range byTime.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				service := group.Keys[0]
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok {
					continue
				}
				amount, _ := strconv.ParseFloat(aws.ToString(metric.Amount), 64)

				if result.Costs.ByService[service] == 0 && amount != 0 {
					result.Services = append(result.Services, service)
				}
				result.Costs.ByService[service] += amount
				result.Costs.ByCategory[categoryFor(service)] += amount
				result.Metrics.ResourcesAnalyzed++
			}
		}

		if out.NextPageToken == nil {
			break
		}
		paginationToken = aws.ToString(out.NextPageToken)
	}

	return result, nil
}

func categoryFor(service string) string {
	if category, ok := serviceCategories[service]; ok {
		return category
	}
	return "other"
}
