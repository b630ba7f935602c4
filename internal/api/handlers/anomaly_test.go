package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/services"
	"github.com/costwatch/costwatch/internal/testutil"
)

func newAnomalyHandler(t *testing.T) (*AnomalyHandler, *testutil.MockAnomalyRepository) {
	t.Helper()
	repo := testutil.NewMockAnomalyRepository()
	log := testLogger()
	service := services.NewAnomalyService(repo, log)
	return NewAnomalyHandler(service, log), repo
}

func seedAnomalies(t *testing.T, repo *testutil.MockAnomalyRepository) {
	t.Helper()
	err := repo.CreateBatch(context.Background(), []anomaly.Result{
		{ResourceID: "vm-1", SubscriptionID: "sub-1", Severity: anomaly.SeverityHigh, AnomalyType: anomaly.TypeSpike, Date: time.Now(), IsAnomaly: true},
		{ResourceID: "vm-2", SubscriptionID: "sub-1", Severity: anomaly.SeverityLow, AnomalyType: anomaly.TypeDrop, Date: time.Now(), IsAnomaly: true},
		{ResourceID: "vm-3", SubscriptionID: "sub-2", Severity: anomaly.SeverityMedium, AnomalyType: anomaly.TypeSpike, Date: time.Now(), IsAnomaly: true},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestAnomalyHandler_List(t *testing.T) {
	tests := []struct {
		name          string
		queryParams   string
		expectedCount int
	}{
		{name: "list all", queryParams: "", expectedCount: 3},
		{name: "filter by subscription", queryParams: "?subscription_id=sub-1", expectedCount: 2},
		{name: "filter by severity", queryParams: "?severity=High", expectedCount: 1},
		{name: "filter by type", queryParams: "?type=Spike", expectedCount: 2},
		{name: "pagination", queryParams: "?page=1&page_size=2", expectedCount: 2},
		{name: "no matches", queryParams: "?subscription_id=sub-9", expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newAnomalyHandler(t)
			seedAnomalies(t, repo)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/anomalies"+tt.queryParams, nil)
			rr := httptest.NewRecorder()

			handler.List(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("handler returned status %v, body %s", rr.Code, rr.Body.String())
			}

			var response struct {
				Success bool `json:"success"`
				Data    struct {
					Data []json.RawMessage `json:"data"`
				} `json:"data"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Data.Data) != tt.expectedCount {
				t.Errorf("handler returned %d anomalies, want %d", len(response.Data.Data), tt.expectedCount)
			}
		})
	}
}

func TestAnomalyHandler_Summary(t *testing.T) {
	handler, repo := newAnomalyHandler(t)
	seedAnomalies(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/anomalies/summary?subscription_id=sub-1", nil)
	rr := httptest.NewRecorder()

	handler.Summary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned status %v, body %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Data["High"] != 1 || response.Data["Low"] != 1 {
		t.Errorf("summary = %v, want High=1 Low=1", response.Data)
	}
}

func TestAnomalyHandler_Summary_MissingSubscription(t *testing.T) {
	handler, _ := newAnomalyHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/anomalies/summary", nil)
	rr := httptest.NewRecorder()

	handler.Summary(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned status %v, want %v", rr.Code, http.StatusBadRequest)
	}
}
