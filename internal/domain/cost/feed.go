package cost

import "context"

// Feed supplies daily cost observations for a subscription. Implementations
// query the warehouse or the cloud billing API; entries are expected to be
// deduplicated at the fetch layer since the detector sums per (resource, day)
// key.
type Feed interface {
	// FetchDailyCosts returns cost observations for the subscription covering
	// the window [now - daysBack, now], ordered by date.
	FetchDailyCosts(ctx context.Context, subscriptionID string, daysBack int) ([]DataPoint, error)
}
