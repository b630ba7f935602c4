package detector

import (
	"math"
	"sort"
	"time"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// Stats holds baseline statistics for a resource's cost history.
type Stats struct {
	Mean    float64
	StdDev  float64
	Samples int
}

// ComputeStats computes the mean and population standard deviation of values.
// The population estimator is used (no Bessel correction).
func ComputeStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}

	return Stats{
		Mean:    mean,
		StdDev:  math.Sqrt(sqDiff / float64(n)),
		Samples: n,
	}
}

// resourceSeries is the date-ordered daily cost series of one resource.
type resourceSeries struct {
	resourceID     string
	subscriptionID string
	days           []time.Time
	costs          []float64
}

// trailing returns the costs of the most recent n days of the series.
func (s *resourceSeries) trailing(n int) []float64 {
	if len(s.costs) <= n {
		return s.costs
	}
	return s.costs[len(s.costs)-n:]
}

// buildSeries groups observations by (resource, day), summing costs that
// share a key, and returns one date-ordered series per resource. Resources
// are returned in lexical order so runs are deterministic.
func buildSeries(points []cost.DataPoint) []*resourceSeries {
	type dayCost struct {
		day  time.Time
		cost float64
	}

	byResource := make(map[string]map[time.Time]float64)
	subscriptions := make(map[string]string)

	for _, p := range points {
		day := p.Day()
		if byResource[p.ResourceID] == nil {
			byResource[p.ResourceID] = make(map[time.Time]float64)
		}
		byResource[p.ResourceID][day] += p.ActualCost
		if _, ok := subscriptions[p.ResourceID]; !ok {
			subscriptions[p.ResourceID] = p.SubscriptionID
		}
	}

	resourceIDs := make([]string, 0, len(byResource))
	for id := range byResource {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	series := make([]*resourceSeries, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		daily := make([]dayCost, 0, len(byResource[id]))
		for day, c := range byResource[id] {
			daily = append(daily, dayCost{day: day, cost: c})
		}
		sort.Slice(daily, func(i, j int) bool {
			return daily[i].day.Before(daily[j].day)
		})

		s := &resourceSeries{
			resourceID:     id,
			subscriptionID: subscriptions[id],
			days:           make([]time.Time, len(daily)),
			costs:          make([]float64, len(daily)),
		}
		for i, dc := range daily {
			s.days[i] = dc.day
			s.costs[i] = dc.cost
		}
		series = append(series, s)
	}

	return series
}
