package anomaly

import "context"

// Repository defines the interface for anomaly record persistence
type Repository interface {
	// CreateBatch stores the anomalies emitted by one detection run
	CreateBatch(ctx context.Context, results []Result) error

	// ListWithPagination retrieves stored anomalies with filters and pagination
	ListWithPagination(ctx context.Context, filter Filter, limit, offset int) ([]Result, int64, error)

	// CountBySeverity counts stored anomalies by severity
	CountBySeverity(ctx context.Context, subscriptionID string) (map[Severity]int, error)
}
