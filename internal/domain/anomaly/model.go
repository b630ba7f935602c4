package anomaly

import "time"

// Type classifies the direction of a cost anomaly relative to the baseline.
type Type string

// Anomaly types
const (
	TypeSpike Type = "Spike"
	TypeDrop  Type = "Drop"
)

// Severity is a three-tier classification combining statistical deviation
// and absolute dollar impact.
type Severity string

// Severity levels
const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Severities lists all severity levels, highest first.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Result represents a detected cost anomaly. A Result is only ever created
// for observations that crossed the detection thresholds; sub-threshold
// observations produce no record.
type Result struct {
	ResourceID         string    `json:"resource_id"`
	SubscriptionID     string    `json:"subscription_id"`
	Date               time.Time `json:"date"`
	ActualCost         float64   `json:"actual_cost"`
	ExpectedCost       float64   `json:"expected_cost"`
	Variance           float64   `json:"variance"`
	VariancePercentage float64   `json:"variance_percentage"`
	ZScore             float64   `json:"z_score"`
	AnomalyType        Type      `json:"anomaly_type"`
	Severity           Severity  `json:"severity"`
	IsAnomaly          bool      `json:"is_anomaly"`
	Confidence         float64   `json:"confidence"`
	DetectedAt         time.Time `json:"detected_at"`
}

// Thresholds holds the detection thresholds. ConfidenceThreshold is carried
// for consumers but never gates emission; results below it are still
// reported.
type Thresholds struct {
	ZScoreThreshold     float64
	MinCostThreshold    float64
	ConfidenceThreshold float64
}

// DefaultThresholds returns the standard detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ZScoreThreshold:     2.0,
		MinCostThreshold:    10.0,
		ConfidenceThreshold: 0.8,
	}
}

// HighSeveritySummary is the compact representation of a high-severity
// anomaly included in the run summary returned to the caller.
type HighSeveritySummary struct {
	ResourceID         string    `json:"resource_id"`
	Date               time.Time `json:"date"`
	ActualCost         float64   `json:"actual_cost"`
	ExpectedCost       float64   `json:"expected_cost"`
	VariancePercentage float64   `json:"variance_percentage"`
	ZScore             float64   `json:"z_score"`
}

// RunSummary is returned to the triggering caller after a detection run.
type RunSummary struct {
	SubscriptionID        string                `json:"subscription_id"`
	AnalysisPeriodDays    int                   `json:"analysis_period_days"`
	ResourcesAnalyzed     int                   `json:"total_resources_analyzed"`
	AnomaliesDetected     int                   `json:"anomalies_detected"`
	AlertCounts           map[Severity]int      `json:"alert_counts"`
	ResultsLocation       string                `json:"results_blob_path,omitempty"`
	Timestamp             time.Time             `json:"timestamp"`
	HighSeverityAnomalies []HighSeveritySummary `json:"high_severity_anomalies"`
}

// Filter contains anomaly listing options
type Filter struct {
	SubscriptionID string
	ResourceID     string
	Type           string
	Severity       string
}
