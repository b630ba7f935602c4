package storage

import (
	"encoding/json"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

const dateLayout = "2006-01-02"

// ResultRecord is the external representation of one anomaly in the saved
// document. The detected_at timestamp is generated when the document is
// serialized, not copied from the in-memory result.
type ResultRecord struct {
	ResourceID         string  `json:"resource_id"`
	SubscriptionID     string  `json:"subscription_id"`
	Date               string  `json:"date"`
	ActualCost         float64 `json:"actual_cost"`
	ExpectedCost       float64 `json:"expected_cost"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variance_percentage"`
	ZScore             float64 `json:"z_score"`
	AnomalyType        string  `json:"anomaly_type"`
	Severity           string  `json:"severity"`
	IsAnomaly          bool    `json:"is_anomaly"`
	Confidence         float64 `json:"confidence"`
	DetectedAt         string  `json:"detected_at"`
}

// MarshalResults serializes anomalies to the array-of-objects JSON document
// written to storage, stamping each record with now in ISO-8601 form.
func MarshalResults(results []anomaly.Result, now time.Time) ([]byte, error) {
	records := make([]ResultRecord, len(results))
	for i, r := range results {
		records[i] = ResultRecord{
			ResourceID:         r.ResourceID,
			SubscriptionID:     r.SubscriptionID,
			Date:               r.Date.Format(dateLayout),
			ActualCost:         r.ActualCost,
			ExpectedCost:       r.ExpectedCost,
			Variance:           r.Variance,
			VariancePercentage: r.VariancePercentage,
			ZScore:             r.ZScore,
			AnomalyType:        string(r.AnomalyType),
			Severity:           string(r.Severity),
			IsAnomaly:          r.IsAnomaly,
			Confidence:         r.Confidence,
			DetectedAt:         now.UTC().Format(time.RFC3339),
		}
	}
	return json.MarshalIndent(records, "", "  ")
}

// ParseResults decodes a saved document back into anomaly results.
func ParseResults(data []byte) ([]anomaly.Result, error) {
	var records []ResultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	results := make([]anomaly.Result, len(records))
	for i, rec := range records {
		date, err := time.Parse(dateLayout, rec.Date)
		if err != nil {
			return nil, err
		}
		detectedAt, _ := time.Parse(time.RFC3339, rec.DetectedAt)
		results[i] = anomaly.Result{
			ResourceID:         rec.ResourceID,
			SubscriptionID:     rec.SubscriptionID,
			Date:               date,
			ActualCost:         rec.ActualCost,
			ExpectedCost:       rec.ExpectedCost,
			Variance:           rec.Variance,
			VariancePercentage: rec.VariancePercentage,
			ZScore:             rec.ZScore,
			AnomalyType:        anomaly.Type(rec.AnomalyType),
			Severity:           anomaly.Severity(rec.Severity),
			IsAnomaly:          rec.IsAnomaly,
			Confidence:         rec.Confidence,
			DetectedAt:         detectedAt,
		}
	}
	return results, nil
}
