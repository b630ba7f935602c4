package alerting

import (
	"context"
	"fmt"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
)

// Dispatcher partitions anomalies by severity and routes them: high severity
// goes to the active notification path as one batch, medium and low are
// recorded passively (count only).
type Dispatcher struct {
	notifier Notifier
	logger   *logger.Logger
}

// NewDispatcher creates an alert dispatcher.
func NewDispatcher(notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		logger:   log,
	}
}

// Dispatch routes the run's anomalies and returns alert counts for every
// severity tier; absent tiers are reported as 0. A failure on the active
// path aborts dispatch; the passive path is best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, anomalies []anomaly.Result) (map[anomaly.Severity]int, error) {
	counts := map[anomaly.Severity]int{
		anomaly.SeverityHigh:   0,
		anomaly.SeverityMedium: 0,
		anomaly.SeverityLow:    0,
	}

	buckets := make(map[anomaly.Severity][]anomaly.Result)
	for _, a := range anomalies {
		buckets[a.Severity] = append(buckets[a.Severity], a)
	}

	if high := buckets[anomaly.SeverityHigh]; len(high) > 0 {
		if err := d.notifier.NotifyHighSeverity(ctx, high); err != nil {
			return counts, fmt.Errorf("failed to send high severity alert: %w", err)
		}
		counts[anomaly.SeverityHigh] = len(high)
		metrics.RecordAlertDispatch(string(anomaly.SeverityHigh), len(high))
	}

	if medium := buckets[anomaly.SeverityMedium]; len(medium) > 0 {
		d.logger.Infof("MEDIUM SEVERITY ANOMALIES: %d anomalies detected", len(medium))
		counts[anomaly.SeverityMedium] = len(medium)
		metrics.RecordAlertDispatch(string(anomaly.SeverityMedium), len(medium))
	}

	if low := buckets[anomaly.SeverityLow]; len(low) > 0 {
		d.logger.Infof("LOW SEVERITY ANOMALIES: %d anomalies detected", len(low))
		counts[anomaly.SeverityLow] = len(low)
		metrics.RecordAlertDispatch(string(anomaly.SeverityLow), len(low))
	}

	d.logger.WithFields(map[string]interface{}{
		"high":   counts[anomaly.SeverityHigh],
		"medium": counts[anomaly.SeverityMedium],
		"low":    counts[anomaly.SeverityLow],
	}).Info("Alert dispatch complete")

	return counts, nil
}
