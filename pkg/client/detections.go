package client

import (
	"context"
	"net/http"
	"time"
)

// RunSummary is the result of a detection run
type RunSummary struct {
	SubscriptionID        string                `json:"subscription_id"`
	AnalysisPeriodDays    int                   `json:"analysis_period_days"`
	ResourcesAnalyzed     int                   `json:"total_resources_analyzed"`
	AnomaliesDetected     int                   `json:"anomalies_detected"`
	AlertCounts           map[string]int        `json:"alert_counts"`
	ResultsLocation       string                `json:"results_blob_path,omitempty"`
	Timestamp             time.Time             `json:"timestamp"`
	HighSeverityAnomalies []HighSeverityAnomaly `json:"high_severity_anomalies"`
}

// HighSeverityAnomaly is the compact high-severity entry in a run summary
type HighSeverityAnomaly struct {
	ResourceID         string    `json:"resource_id"`
	Date               time.Time `json:"date"`
	ActualCost         float64   `json:"actual_cost"`
	ExpectedCost       float64   `json:"expected_cost"`
	VariancePercentage float64   `json:"variance_percentage"`
	ZScore             float64   `json:"z_score"`
}

// DetectionRequest triggers a detection run
type DetectionRequest struct {
	SubscriptionID string `json:"subscription_id"`
	DaysBack       int    `json:"days_back,omitempty"`
}

type runResponse struct {
	Success bool       `json:"success"`
	Data    RunSummary `json:"data"`
}

// RunDetection triggers an anomaly detection run for a subscription
func (c *Client) RunDetection(ctx context.Context, req DetectionRequest) (*RunSummary, error) {
	var resp runResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/detections", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Health checks the API liveness endpoint
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/healthz", nil, nil)
}
