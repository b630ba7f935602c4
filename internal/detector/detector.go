package detector

import (
	"math"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/logger"
)

const (
	// minHistoryDays is the minimum number of distinct daily observations a
	// resource needs before it is evaluated at all.
	minHistoryDays = 7

	// trailingWindowDays is the size of the trailing window used to refresh
	// the carry-forward baseline after a resource has been scored.
	trailingWindowDays = 7

	// confidenceRampZ is the |z-score| at which confidence reaches 1.0.
	confidenceRampZ = 3.0

	highZScore     = 3.0
	mediumZScore   = 2.0
	highCostImpact = 1000.0
	medCostImpact  = 100.0
)

// Detector scores daily per-resource cost series against a historical
// baseline. State is per run; construct a fresh Detector for each run.
type Detector struct {
	thresholds anomaly.Thresholds
	logger     *logger.Logger

	// carry-forward trailing-window baselines, keyed by resource ID
	baselines map[string]Stats
}

// New creates a detector with the given thresholds.
func New(thresholds anomaly.Thresholds, log *logger.Logger) *Detector {
	return &Detector{
		thresholds: thresholds,
		logger:     log,
		baselines:  make(map[string]Stats),
	}
}

// Thresholds returns the configured detection thresholds.
func (d *Detector) Thresholds() anomaly.Thresholds {
	return d.thresholds
}

// Baselines returns the trailing-window baseline computed per resource after
// scoring. It reflects the last refresh pass, not the statistics the run's
// anomalies were scored against.
func (d *Detector) Baselines() map[string]Stats {
	return d.baselines
}

// DetectAnomalies evaluates every day of every resource series against that
// resource's historical baseline and returns the observations that crossed
// the thresholds. Resources with fewer than seven distinct days, or with a
// constant cost history, are skipped entirely.
func (d *Detector) DetectAnomalies(points []cost.DataPoint) []anomaly.Result {
	var results []anomaly.Result

	series := buildSeries(points)
	for _, s := range series {
		if len(s.costs) < minHistoryDays {
			continue
		}

		// Baseline excludes the most recent day so the final day is scored
		// against the trailing history.
		baseline := ComputeStats(s.costs[:len(s.costs)-1])
		if baseline.StdDev == 0 {
			continue
		}

		for i, c := range s.costs {
			r, ok := d.score(s, s.days[i], c, baseline)
			if !ok {
				continue
			}
			results = append(results, r)

			d.logger.WithFields(map[string]interface{}{
				"resource_id": s.resourceID,
				"date":        r.Date.Format("2006-01-02"),
				"z_score":     r.ZScore,
				"severity":    r.Severity,
			}).Info("Anomaly detected")
		}

		// Refresh the baseline to the trailing window for carry-forward use.
		// Already-scored days are not re-evaluated against it.
		d.baselines[s.resourceID] = ComputeStats(s.trailing(trailingWindowDays))
	}

	d.logger.WithFields(map[string]interface{}{
		"anomalies": len(results),
		"resources": len(series),
	}).Info("Anomaly detection pass complete")

	return results
}

// score evaluates a single observation against the baseline.
func (d *Detector) score(s *resourceSeries, day time.Time, c float64, baseline Stats) (anomaly.Result, bool) {
	zScore := (c - baseline.Mean) / baseline.StdDev

	if math.Abs(zScore) < d.thresholds.ZScoreThreshold || c < d.thresholds.MinCostThreshold {
		return anomaly.Result{}, false
	}

	anomalyType := anomaly.TypeDrop
	if c > baseline.Mean {
		anomalyType = anomaly.TypeSpike
	}

	variancePct := 0.0
	if baseline.Mean > 0 {
		variancePct = (c - baseline.Mean) / baseline.Mean * 100
	}

	return anomaly.Result{
		ResourceID:         s.resourceID,
		SubscriptionID:     s.subscriptionID,
		Date:               day,
		ActualCost:         c,
		ExpectedCost:       baseline.Mean,
		Variance:           c - baseline.Mean,
		VariancePercentage: variancePct,
		ZScore:             zScore,
		AnomalyType:        anomalyType,
		Severity:           DetermineSeverity(zScore, c, baseline.Mean),
		IsAnomaly:          true,
		Confidence:         Confidence(zScore),
		DetectedAt:         time.Now().UTC(),
	}, true
}

// Confidence maps a z-score to a [0,1] confidence, ramping linearly and
// maxing out at |z| = 3.
func Confidence(zScore float64) float64 {
	return math.Min(1.0, math.Abs(zScore)/confidenceRampZ)
}

// DetermineSeverity classifies an anomaly by statistical deviation and
// absolute dollar impact. Each tier's conditions are checked independently;
// the highest qualifying tier wins.
func DetermineSeverity(zScore, actualCost, expectedCost float64) anomaly.Severity {
	absZ := math.Abs(zScore)
	costImpact := math.Abs(actualCost - expectedCost)

	switch {
	case absZ >= highZScore || costImpact >= highCostImpact:
		return anomaly.SeverityHigh
	case absZ >= mediumZScore || costImpact >= medCostImpact:
		return anomaly.SeverityMedium
	default:
		return anomaly.SeverityLow
	}
}
