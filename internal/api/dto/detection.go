package dto

import "time"

// DetectionRequest is the payload that triggers a detection run
type DetectionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	DaysBack       int    `json:"days_back" validate:"omitempty,gte=7,lte=365"`
}

// AnomalyDTO is the API representation of a stored anomaly
type AnomalyDTO struct {
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
