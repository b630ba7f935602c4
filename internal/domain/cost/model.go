package cost

import "time"

// DataPoint represents one daily cost observation for a resource.
// The descriptive metadata (meter category, service name) is carried for
// reporting but is not used by the detector's math.
type DataPoint struct {
	ResourceID     string    `json:"resource_id"`
	SubscriptionID string    `json:"subscription_id"`
	Date           time.Time `json:"date"` // calendar day, no time component
	ActualCost     float64   `json:"actual_cost"`
	MeterCategory  string    `json:"meter_category,omitempty"`
	ServiceName    string    `json:"service_name,omitempty"`
}

// Day returns the data point's date truncated to a calendar day in UTC.
func (p DataPoint) Day() time.Time {
	return time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, time.UTC)
}
