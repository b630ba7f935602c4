package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
)

// AzureCredentials holds the service principal used for cost queries.
type AzureCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// AzureCostFeed implements cost.Feed against the Azure Cost Management API.
type AzureCostFeed struct {
	creds AzureCredentials
}

// NewAzureCostFeed creates a cost feed backed by Azure Cost Management.
func NewAzureCostFeed(creds AzureCredentials) *AzureCostFeed {
	return &AzureCostFeed{creds: creds}
}

// FetchDailyCosts retrieves daily actual cost per resource for the
// subscription over the last daysBack days.
func (f *AzureCostFeed) FetchDailyCosts(ctx context.Context, subscriptionID string, daysBack int) ([]cost.DataPoint, error) {
	start := time.Now()
	points, err := f.fetch(ctx, subscriptionID, daysBack)
	if err != nil {
		metrics.RecordCostFetch("error", time.Since(start))
		return nil, err
	}
	metrics.RecordCostFetch("success", time.Since(start))
	return points, nil
}

func (f *AzureCostFeed) fetch(ctx context.Context, subscriptionID string, daysBack int) ([]cost.DataPoint, error) {
	credential, err := azidentity.NewClientSecretCredential(f.creds.TenantID, f.creds.ClientID, f.creds.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -daysBack)

	scope := fmt.Sprintf("subscriptions/%s", subscriptionID)

	timePeriod := armcostmanagement.QueryTimePeriod{
		From: &startDate,
		To:   &now,
	}

	sumFunc := armcostmanagement.FunctionTypeSum
	queryAggregation := map[string]*armcostmanagement.QueryAggregation{
		"PreTaxCost": {
			Name:     ptrStr("PreTaxCost"),
			Function: &sumFunc,
		},
	}

	dimGrouping := armcostmanagement.QueryColumnTypeDimension
	queryGrouping := []*armcostmanagement.QueryGrouping{
		{
			Type: &dimGrouping,
			Name: ptrStr("ResourceId"),
		},
		{
			Type: &dimGrouping,
			Name: ptrStr("ServiceName"),
		},
		{
			Type: &dimGrouping,
			Name: ptrStr("MeterCategory"),
		},
	}

	granularity := armcostmanagement.GranularityTypeDaily
	timeframeCustom := armcostmanagement.TimeframeTypeCustom
	exportTypeUsage := armcostmanagement.ExportTypeActualCost

	queryDef := armcostmanagement.QueryDefinition{
		Type:       &exportTypeUsage,
		Timeframe:  &timeframeCustom,
		TimePeriod: &timePeriod,
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: queryAggregation,
			Grouping:    queryGrouping,
		},
	}

	result, err := client.Usage(ctx, scope, queryDef, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure Cost Management API error: %w", err)
	}

	if result.Properties == nil || result.Properties.Rows == nil {
		return nil, nil
	}

	// Build column index mapping
	colIndex := make(map[string]int)
	if result.Properties.Columns != nil {
		for i, col := range result.Properties.Columns {
			if col.Name != nil {
				colIndex[*col.Name] = i
			}
		}
	}

	costIdx, hasCost := colIndex["PreTaxCost"]
	resourceIdx, hasResource := colIndex["ResourceId"]
	serviceIdx, hasService := colIndex["ServiceName"]
	meterIdx, hasMeter := colIndex["MeterCategory"]
	dateIdx, hasDate := colIndex["UsageDateKey"]
	if !hasDate {
		dateIdx, hasDate = colIndex["UsageDate"]
	}

	var points []cost.DataPoint
	for _, row := range result.Properties.Rows {
		if len(row) == 0 {
			continue
		}

		var dailyCost float64
		if hasCost && costIdx < len(row) {
			if v, ok := row[costIdx].(float64); ok {
				dailyCost = v
			}
		}

		var resourceID, serviceName, meterCategory string
		if hasResource && resourceIdx < len(row) {
			if v, ok := row[resourceIdx].(string); ok {
				resourceID = v
			}
		}
		if hasService && serviceIdx < len(row) {
			if v, ok := row[serviceIdx].(string); ok {
				serviceName = v
			}
		}
		if hasMeter && meterIdx < len(row) {
			if v, ok := row[meterIdx].(string); ok {
				meterCategory = v
			}
		}
		if resourceID == "" {
			continue
		}

		var costDate time.Time
		if hasDate && dateIdx < len(row) {
			switch v := row[dateIdx].(type) {
			case float64:
				// Azure returns date as YYYYMMDD integer
				dateInt := int(v)
				year := dateInt / 10000
				month := (dateInt % 10000) / 100
				day := dateInt % 100
				costDate = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			case string:
				costDate, _ = time.Parse("2006-01-02", v)
			}
		}

		if costDate.IsZero() {
			continue
		}

		points = append(points, cost.DataPoint{
			ResourceID:     resourceID,
			SubscriptionID: subscriptionID,
			Date:           costDate,
			ActualCost:     dailyCost,
			ServiceName:    serviceName,
			MeterCategory:  meterCategory,
		})
	}

	return points, nil
}

func ptrStr(s string) *string {
	return &s
}
