package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

func TestMarshalResults(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)
	results := []anomaly.Result{
		{
			ResourceID:         "/subscriptions/sub-1/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/vm-1",
			SubscriptionID:     "sub-1",
			Date:               time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ActualCost:         1000,
			ExpectedCost:       100,
			Variance:           900,
			VariancePercentage: 900,
			ZScore:             180,
			AnomalyType:        anomaly.TypeSpike,
			Severity:           anomaly.SeverityHigh,
			IsAnomaly:          true,
			Confidence:         1.0,
			// In-memory timestamp differs from the serialization stamp.
			DetectedAt: time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
		},
	}

	data, err := MarshalResults(results, now)
	if err != nil {
		t.Fatalf("MarshalResults() error = %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("document has %d records, want 1", len(decoded))
	}

	rec := decoded[0]
	if rec["date"] != "2026-08-29" {
		t.Errorf("date = %v, want 2026-08-29", rec["date"])
	}
	if rec["detected_at"] != "2026-08-30T12:30:00Z" {
		t.Errorf("detected_at = %v, want serialization timestamp 2026-08-30T12:30:00Z", rec["detected_at"])
	}
	if rec["anomaly_type"] != "Spike" {
		t.Errorf("anomaly_type = %v, want Spike", rec["anomaly_type"])
	}
	if rec["severity"] != "High" {
		t.Errorf("severity = %v, want High", rec["severity"])
	}
	if rec["is_anomaly"] != true {
		t.Errorf("is_anomaly = %v, want true", rec["is_anomaly"])
	}
}

func TestMarshalResults_Empty(t *testing.T) {
	data, err := MarshalResults(nil, time.Now())
	if err != nil {
		t.Fatalf("MarshalResults() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty document = %q, want []", string(data))
	}
}

func TestParseResults_RoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)
	original := []anomaly.Result{
		{
			ResourceID:     "vm-1",
			SubscriptionID: "sub-1",
			Date:           time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
			ActualCost:     500,
			ExpectedCost:   100,
			Variance:       400,
			ZScore:         4.5,
			AnomalyType:    anomaly.TypeSpike,
			Severity:       anomaly.SeverityMedium,
			IsAnomaly:      true,
			Confidence:     1.0,
		},
		{
			ResourceID:     "vm-2",
			SubscriptionID: "sub-1",
			Date:           time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ActualCost:     15,
			ExpectedCost:   80,
			Variance:       -65,
			ZScore:         -2.5,
			AnomalyType:    anomaly.TypeDrop,
			Severity:       anomaly.SeverityLow,
			IsAnomaly:      true,
			Confidence:     0.83,
		},
	}

	data, err := MarshalResults(original, now)
	if err != nil {
		t.Fatalf("MarshalResults() error = %v", err)
	}

	parsed, err := ParseResults(data)
	if err != nil {
		t.Fatalf("ParseResults() error = %v", err)
	}
	if len(parsed) != len(original) {
		t.Fatalf("ParseResults() returned %d results, want %d", len(parsed), len(original))
	}

	for i, got := range parsed {
		want := original[i]
		if got.ResourceID != want.ResourceID {
			t.Errorf("result %d resource = %s, want %s", i, got.ResourceID, want.ResourceID)
		}
		if !got.Date.Equal(want.Date) {
			t.Errorf("result %d date = %v, want %v", i, got.Date, want.Date)
		}
		if got.ActualCost != want.ActualCost {
			t.Errorf("result %d actual cost = %v, want %v", i, got.ActualCost, want.ActualCost)
		}
		if got.AnomalyType != want.AnomalyType {
			t.Errorf("result %d type = %v, want %v", i, got.AnomalyType, want.AnomalyType)
		}
		if got.Severity != want.Severity {
			t.Errorf("result %d severity = %v, want %v", i, got.Severity, want.Severity)
		}
		if !got.DetectedAt.Equal(now) {
			t.Errorf("result %d detected_at = %v, want %v", i, got.DetectedAt, now)
		}
	}
}

func TestParseResults_Invalid(t *testing.T) {
	if _, err := ParseResults([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("ParseResults() error = nil, want error for non-array document")
	}
	if _, err := ParseResults([]byte(`[{"date":"29-08-2026"}]`)); err == nil {
		t.Error("ParseResults() error = nil, want error for malformed date")
	}
}
