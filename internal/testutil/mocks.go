package testutil

import (
	"context"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

// MockFeed is a mock implementation of cost.Feed
type MockFeed struct {
	Points     []cost.DataPoint
	FetchError error
	Calls      int
	LastSub    string
	LastDays   int
}

func NewMockFeed(points []cost.DataPoint) *MockFeed {
	return &MockFeed{Points: points}
}

func (m *MockFeed) FetchDailyCosts(ctx context.Context, subscriptionID string, daysBack int) ([]cost.DataPoint, error) {
	m.Calls++
	m.LastSub = subscriptionID
	m.LastDays = daysBack
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.Points, nil
}

// MockSink is a mock implementation of storage.Sink
type MockSink struct {
	Location  string
	SaveError error
	Saved     [][]anomaly.Result
}

func NewMockSink() *MockSink {
	return &MockSink{Location: "anomalies/anomaly-results-test.json"}
}

func (m *MockSink) Save(ctx context.Context, results []anomaly.Result) (string, error) {
	m.Saved = append(m.Saved, results)
	if m.SaveError != nil {
		return "", m.SaveError
	}
	return m.Location, nil
}

// MockNotifier is a mock implementation of alerting.Notifier
type MockNotifier struct {
	Batches     [][]anomaly.Result
	NotifyError error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyHighSeverity(ctx context.Context, results []anomaly.Result) error {
	m.Batches = append(m.Batches, results)
	if m.NotifyError != nil {
		return m.NotifyError
	}
	return nil
}

// MockAnomalyRepository is a mock implementation of anomaly.Repository
type MockAnomalyRepository struct {
	Records     []anomaly.Result
	CreateError error
	ListError   error
	CountError  error
}

func NewMockAnomalyRepository() *MockAnomalyRepository {
	return &MockAnomalyRepository{}
}

func (m *MockAnomalyRepository) CreateBatch(ctx context.Context, results []anomaly.Result) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Records = append(m.Records, results...)
	return nil
}

func (m *MockAnomalyRepository) ListWithPagination(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]anomaly.Result, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	var matched []anomaly.Result
	for _, r := range m.Records {
		if filter.SubscriptionID != "" && r.SubscriptionID != filter.SubscriptionID {
			continue
		}
		if filter.ResourceID != "" && r.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Type != "" && string(r.AnomalyType) != filter.Type {
			continue
		}
		if filter.Severity != "" && string(r.Severity) != filter.Severity {
			continue
		}
		matched = append(matched, r)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MockAnomalyRepository) CountBySeverity(ctx context.Context, subscriptionID string) (map[anomaly.Severity]int, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}

	counts := map[anomaly.Severity]int{
		anomaly.SeverityHigh:   0,
		anomaly.SeverityMedium: 0,
		anomaly.SeverityLow:    0,
	}
	for _, r := range m.Records {
		if subscriptionID != "" && r.SubscriptionID != subscriptionID {
			continue
		}
		counts[r.Severity]++
	}
	return counts, nil
}
