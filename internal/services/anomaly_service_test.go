package services

import (
	"context"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/testutil"
)

func seedRepo(t *testing.T, repo *testutil.MockAnomalyRepository) {
	t.Helper()
	records := []anomaly.Result{
		{ResourceID: "vm-1", SubscriptionID: "sub-1", Severity: anomaly.SeverityHigh, AnomalyType: anomaly.TypeSpike, Date: time.Now()},
		{ResourceID: "vm-2", SubscriptionID: "sub-1", Severity: anomaly.SeverityMedium, AnomalyType: anomaly.TypeDrop, Date: time.Now()},
		{ResourceID: "vm-3", SubscriptionID: "sub-2", Severity: anomaly.SeverityLow, AnomalyType: anomaly.TypeSpike, Date: time.Now()},
	}
	if err := repo.CreateBatch(context.Background(), records); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestAnomalyService_List(t *testing.T) {
	repo := testutil.NewMockAnomalyRepository()
	seedRepo(t, repo)
	service := NewAnomalyService(repo, testLogger())

	tests := []struct {
		name      string
		filter    anomaly.Filter
		wantTotal int64
	}{
		{name: "no filter returns all", filter: anomaly.Filter{}, wantTotal: 3},
		{name: "filter by subscription", filter: anomaly.Filter{SubscriptionID: "sub-1"}, wantTotal: 2},
		{name: "filter by severity", filter: anomaly.Filter{Severity: "High"}, wantTotal: 1},
		{name: "filter by resource", filter: anomaly.Filter{ResourceID: "vm-3"}, wantTotal: 1},
		{name: "filter by type", filter: anomaly.Filter{Type: "Spike"}, wantTotal: 2},
		{name: "no matches", filter: anomaly.Filter{SubscriptionID: "sub-9"}, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := service.List(context.Background(), tt.filter, 20, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("List() total = %d, want %d", total, tt.wantTotal)
			}
			if int64(len(results)) != tt.wantTotal {
				t.Errorf("List() returned %d results, want %d", len(results), tt.wantTotal)
			}
		})
	}
}

func TestAnomalyService_GetSummary(t *testing.T) {
	repo := testutil.NewMockAnomalyRepository()
	seedRepo(t, repo)
	service := NewAnomalyService(repo, testLogger())

	counts, err := service.GetSummary(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}

	if counts[anomaly.SeverityHigh] != 1 {
		t.Errorf("high count = %d, want 1", counts[anomaly.SeverityHigh])
	}
	if counts[anomaly.SeverityMedium] != 1 {
		t.Errorf("medium count = %d, want 1", counts[anomaly.SeverityMedium])
	}
	if counts[anomaly.SeverityLow] != 0 {
		t.Errorf("low count = %d, want 0", counts[anomaly.SeverityLow])
	}
}
