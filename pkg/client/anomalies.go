package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Anomaly is a stored anomaly record
type Anomaly struct {
	ResourceID         string    `json:"resource_id"`
	SubscriptionID     string    `json:"subscription_id"`
	Date               time.Time `json:"date"`
	ActualCost         float64   `json:"actual_cost"`
	ExpectedCost       float64   `json:"expected_cost"`
	Variance           float64   `json:"variance"`
	VariancePercentage float64   `json:"variance_percentage"`
	ZScore             float64   `json:"z_score"`
	AnomalyType        string    `json:"anomaly_type"`
	Severity           string    `json:"severity"`
	Confidence         float64   `json:"confidence"`
	DetectedAt         time.Time `json:"detected_at"`
}

// AnomalyListOptions filters the anomaly list
type AnomalyListOptions struct {
	SubscriptionID string
	ResourceID     string
	Severity       string
	Page           int
	PageSize       int
}

type anomalyListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Data       []Anomaly `json:"data"`
		Page       int       `json:"page"`
		PageSize   int       `json:"page_size"`
		TotalItems int64     `json:"total_items"`
	} `json:"data"`
}

// ListAnomalies retrieves stored anomalies
func (c *Client) ListAnomalies(ctx context.Context, opts AnomalyListOptions) ([]Anomaly, int64, error) {
	q := url.Values{}
	if opts.SubscriptionID != "" {
		q.Set("subscription_id", opts.SubscriptionID)
	}
	if opts.ResourceID != "" {
		q.Set("resource_id", opts.ResourceID)
	}
	if opts.Severity != "" {
		q.Set("severity", opts.Severity)
	}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprintf("%d", opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", fmt.Sprintf("%d", opts.PageSize))
	}

	path := "/api/v1/anomalies"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp anomalyListResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Data.Data, resp.Data.TotalItems, nil
}
