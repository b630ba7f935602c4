package services

import (
	"context"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
)

// AnomalyService serves stored anomaly records.
type AnomalyService struct {
	repo   anomaly.Repository
	logger *logger.Logger
}

// NewAnomalyService creates a new anomaly query service
func NewAnomalyService(repo anomaly.Repository, log *logger.Logger) *AnomalyService {
	return &AnomalyService{
		repo:   repo,
		logger: log,
	}
}

// List retrieves stored anomalies with filters and pagination
func (s *AnomalyService) List(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]anomaly.Result, int64, error) {
	return s.repo.ListWithPagination(ctx, filter, limit, offset)
}

// GetSummary gets stored anomaly counts by severity for a subscription
func (s *AnomalyService) GetSummary(ctx context.Context, subscriptionID string) (map[anomaly.Severity]int, error) {
	return s.repo.CountBySeverity(ctx, subscriptionID)
}
