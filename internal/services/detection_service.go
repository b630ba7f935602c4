package services

import (
	"context"
	"time"

	"github.com/costwatch/costwatch/internal/alerting"
	"github.com/costwatch/costwatch/internal/detector"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
	"github.com/costwatch/costwatch/internal/storage"
)

// RunRequest describes one detection run.
type RunRequest struct {
	SubscriptionID string
	DaysBack       int
}

// DetectionService runs the anomaly detection pipeline for a subscription:
// fetch cost data, detect, save results, dispatch alerts. One run is strictly
// sequential and builds fresh detector state.
type DetectionService struct {
	feed       cost.Feed
	sink       storage.Sink
	dispatcher *alerting.Dispatcher
	repo       anomaly.Repository // optional; nil disables persistence
	thresholds anomaly.Thresholds
	logger     *logger.Logger
}

// NewDetectionService creates a detection service. repo may be nil when no
// database is configured.
func NewDetectionService(
	feed cost.Feed,
	sink storage.Sink,
	dispatcher *alerting.Dispatcher,
	repo anomaly.Repository,
	thresholds anomaly.Thresholds,
	log *logger.Logger,
) *DetectionService {
	return &DetectionService{
		feed:       feed,
		sink:       sink,
		dispatcher: dispatcher,
		repo:       repo,
		thresholds: thresholds,
		logger:     log,
	}
}

// Run executes the detection pipeline and returns the run summary. The
// summary is returned even when zero observations were fetched; that case is
// a zero-anomaly success, not an error.
func (s *DetectionService) Run(ctx context.Context, req RunRequest) (*anomaly.RunSummary, error) {
	start := time.Now()

	summary, err := s.run(ctx, req)
	if err != nil {
		metrics.RecordDetectionRun("error", time.Since(start))
		return nil, err
	}

	metrics.RecordDetectionRun("success", time.Since(start))
	return summary, nil
}

func (s *DetectionService) run(ctx context.Context, req RunRequest) (*anomaly.RunSummary, error) {
	if req.SubscriptionID == "" {
		return nil, errors.BadRequest("subscription_id parameter is required")
	}
	if req.DaysBack < 1 {
		req.DaysBack = 30
	}

	log := s.logger.With("subscription_id", req.SubscriptionID)
	log.Info("Starting anomaly detection run")

	points, err := s.feed.FetchDailyCosts(ctx, req.SubscriptionID, req.DaysBack)
	if err != nil {
		log.ErrorWithErr(err, "Failed to fetch cost data")
		return nil, errors.ProviderAPIError("Azure Cost Management", err)
	}

	if len(points) == 0 {
		log.Info("No cost data available for analysis")
		return &anomaly.RunSummary{
			SubscriptionID:        req.SubscriptionID,
			AnalysisPeriodDays:    req.DaysBack,
			AlertCounts:           zeroCounts(),
			Timestamp:             time.Now().UTC(),
			HighSeverityAnomalies: []anomaly.HighSeveritySummary{},
		}, nil
	}

	// Fresh detector state per run
	d := detector.New(s.thresholds, s.logger)
	results := d.DetectAnomalies(points)

	for _, a := range results {
		metrics.RecordAnomaly(string(a.Severity), string(a.AnomalyType))
	}

	location, err := s.sink.Save(ctx, results)
	if err != nil {
		log.ErrorWithErr(err, "Failed to save anomaly results")
		return nil, errors.StorageError("Failed to save anomaly results", err)
	}

	if s.repo != nil {
		// Persistence is a reporting convenience; a failure here must not
		// fail a run whose results are already durably saved.
		if err := s.repo.CreateBatch(ctx, results); err != nil {
			log.ErrorWithErr(err, "Failed to persist anomaly records")
		}
	}

	counts, err := s.dispatcher.Dispatch(ctx, results)
	if err != nil {
		log.ErrorWithErr(err, "Failed to dispatch alerts")
		return nil, errors.AlertingError("Failed to dispatch alerts", err)
	}

	summary := &anomaly.RunSummary{
		SubscriptionID:        req.SubscriptionID,
		AnalysisPeriodDays:    req.DaysBack,
		ResourcesAnalyzed:     countResources(points),
		AnomaliesDetected:     len(results),
		AlertCounts:           counts,
		ResultsLocation:       location,
		Timestamp:             time.Now().UTC(),
		HighSeverityAnomalies: highSeveritySubset(results),
	}

	log.WithFields(map[string]interface{}{
		"resources": summary.ResourcesAnalyzed,
		"anomalies": summary.AnomaliesDetected,
		"location":  summary.ResultsLocation,
	}).Info("Anomaly detection run completed")

	return summary, nil
}

func zeroCounts() map[anomaly.Severity]int {
	return map[anomaly.Severity]int{
		anomaly.SeverityHigh:   0,
		anomaly.SeverityMedium: 0,
		anomaly.SeverityLow:    0,
	}
}

func countResources(points []cost.DataPoint) int {
	seen := make(map[string]struct{})
	for _, p := range points {
		seen[p.ResourceID] = struct{}{}
	}
	return len(seen)
}

func highSeveritySubset(results []anomaly.Result) []anomaly.HighSeveritySummary {
	subset := []anomaly.HighSeveritySummary{}
	for _, a := range results {
		if a.Severity != anomaly.SeverityHigh {
			continue
		}
		subset = append(subset, anomaly.HighSeveritySummary{
			ResourceID:         a.ResourceID,
			Date:               a.Date,
			ActualCost:         a.ActualCost,
			ExpectedCost:       a.ExpectedCost,
			VariancePercentage: a.VariancePercentage,
			ZScore:             a.ZScore,
		})
	}
	return subset
}
