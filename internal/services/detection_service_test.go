package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/alerting"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/testutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

type serviceMocks struct {
	feed     *testutil.MockFeed
	sink     *testutil.MockSink
	notifier *testutil.MockNotifier
	repo     *testutil.MockAnomalyRepository
}

func newTestService(points []cost.DataPoint) (*DetectionService, *serviceMocks) {
	mocks := &serviceMocks{
		feed:     testutil.NewMockFeed(points),
		sink:     testutil.NewMockSink(),
		notifier: testutil.NewMockNotifier(),
		repo:     testutil.NewMockAnomalyRepository(),
	}
	log := testLogger()
	dispatcher := alerting.NewDispatcher(mocks.notifier, log)
	service := NewDetectionService(mocks.feed, mocks.sink, dispatcher, mocks.repo, anomaly.DefaultThresholds(), log)
	return service, mocks
}

// spikeSeries yields a 10-day baseline around $100 followed by a $1000 spike,
// which detects as a single high severity anomaly.
func spikeSeries(resourceID string) []cost.DataPoint {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	costs := []float64{95, 105, 95, 105, 95, 105, 95, 105, 95, 105, 1000}
	points := make([]cost.DataPoint, len(costs))
	for i, c := range costs {
		points[i] = cost.DataPoint{
			ResourceID:     resourceID,
			SubscriptionID: "sub-1",
			Date:           start.AddDate(0, 0, i),
			ActualCost:     c,
		}
	}
	return points
}

func assertAppErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("error = %v, want *errors.AppError", err)
	}
	if appErr.Code != wantCode {
		t.Errorf("error code = %s, want %s", appErr.Code, wantCode)
	}
}

func TestDetectionService_Run_MissingSubscription(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.Run(context.Background(), RunRequest{})
	if err == nil {
		t.Fatal("Run() error = nil, want error for missing subscription")
	}
	assertAppErrorCode(t, err, errors.ErrCodeBadRequest)
}

func TestDetectionService_Run_EmptyFeed(t *testing.T) {
	service, mocks := newTestService(nil)

	summary, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1", DaysBack: 30})
	if err != nil {
		t.Fatalf("Run() error = %v, want zero-anomaly success", err)
	}

	if summary.SubscriptionID != "sub-1" {
		t.Errorf("summary subscription = %s, want sub-1", summary.SubscriptionID)
	}
	if summary.AnomaliesDetected != 0 {
		t.Errorf("anomalies detected = %d, want 0", summary.AnomaliesDetected)
	}
	if summary.ResourcesAnalyzed != 0 {
		t.Errorf("resources analyzed = %d, want 0", summary.ResourcesAnalyzed)
	}
	for _, severity := range anomaly.Severities {
		if summary.AlertCounts[severity] != 0 {
			t.Errorf("alert counts[%s] = %d, want 0", severity, summary.AlertCounts[severity])
		}
	}
	if summary.HighSeverityAnomalies == nil || len(summary.HighSeverityAnomalies) != 0 {
		t.Errorf("high severity anomalies = %v, want empty slice", summary.HighSeverityAnomalies)
	}
	if len(mocks.sink.Saved) != 0 {
		t.Error("sink was called for an empty feed")
	}
}

func TestDetectionService_Run_FetchError(t *testing.T) {
	service, mocks := newTestService(nil)
	mocks.feed.FetchError = stderrors.New("throttled")

	_, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1"})
	if err == nil {
		t.Fatal("Run() error = nil, want provider error")
	}
	assertAppErrorCode(t, err, errors.ErrCodeProviderAPI)
}

func TestDetectionService_Run_SinkError(t *testing.T) {
	service, mocks := newTestService(spikeSeries("vm-1"))
	mocks.sink.SaveError = stderrors.New("container unavailable")

	_, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1"})
	if err == nil {
		t.Fatal("Run() error = nil, want storage error")
	}
	assertAppErrorCode(t, err, errors.ErrCodeStorage)

	if len(mocks.notifier.Batches) != 0 {
		t.Error("alerts were dispatched despite storage failure")
	}
}

func TestDetectionService_Run_DispatchError(t *testing.T) {
	service, mocks := newTestService(spikeSeries("vm-1"))
	mocks.notifier.NotifyError = stderrors.New("webhook down")

	_, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1"})
	if err == nil {
		t.Fatal("Run() error = nil, want alerting error")
	}
	assertAppErrorCode(t, err, errors.ErrCodeAlerting)

	// Results were already saved before dispatch failed.
	if len(mocks.sink.Saved) != 1 {
		t.Errorf("sink saved %d documents, want 1", len(mocks.sink.Saved))
	}
}

func TestDetectionService_Run_RepoFailureIsNonFatal(t *testing.T) {
	service, mocks := newTestService(spikeSeries("vm-1"))
	mocks.repo.CreateError = stderrors.New("db down")

	summary, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1"})
	if err != nil {
		t.Fatalf("Run() error = %v, want success despite persistence failure", err)
	}
	if summary.AnomaliesDetected != 1 {
		t.Errorf("anomalies detected = %d, want 1", summary.AnomaliesDetected)
	}
}

func TestDetectionService_Run_Summary(t *testing.T) {
	service, mocks := newTestService(spikeSeries("vm-1"))

	summary, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1", DaysBack: 30})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.AnalysisPeriodDays != 30 {
		t.Errorf("analysis period = %d, want 30", summary.AnalysisPeriodDays)
	}
	if summary.ResourcesAnalyzed != 1 {
		t.Errorf("resources analyzed = %d, want 1", summary.ResourcesAnalyzed)
	}
	if summary.AnomaliesDetected != 1 {
		t.Errorf("anomalies detected = %d, want 1", summary.AnomaliesDetected)
	}
	if summary.AlertCounts[anomaly.SeverityHigh] != 1 {
		t.Errorf("high alert count = %d, want 1", summary.AlertCounts[anomaly.SeverityHigh])
	}
	if summary.ResultsLocation != mocks.sink.Location {
		t.Errorf("results location = %s, want %s", summary.ResultsLocation, mocks.sink.Location)
	}
	if len(summary.HighSeverityAnomalies) != 1 {
		t.Fatalf("high severity subset has %d entries, want 1", len(summary.HighSeverityAnomalies))
	}
	if summary.HighSeverityAnomalies[0].ActualCost != 1000 {
		t.Errorf("high severity actual cost = %v, want 1000", summary.HighSeverityAnomalies[0].ActualCost)
	}

	// Anomaly records were persisted for the query API.
	if len(mocks.repo.Records) != 1 {
		t.Errorf("repo holds %d records, want 1", len(mocks.repo.Records))
	}
}

func TestDetectionService_Run_DefaultDaysBack(t *testing.T) {
	service, mocks := newTestService(nil)

	summary, err := service.Run(context.Background(), RunRequest{SubscriptionID: "sub-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.AnalysisPeriodDays != 30 {
		t.Errorf("analysis period = %d, want default 30", summary.AnalysisPeriodDays)
	}
	if mocks.feed.LastDays != 30 {
		t.Errorf("feed fetched %d days, want default 30", mocks.feed.LastDays)
	}
}
