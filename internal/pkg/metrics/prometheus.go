package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "costwatch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "costwatch",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Detection run metrics
	detectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "detection",
			Name:      "runs_total",
			Help:      "Total number of anomaly detection runs",
		},
		[]string{"status"},
	)

	detectionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "costwatch",
			Subsystem: "detection",
			Name:      "run_duration_seconds",
			Help:      "Duration of an anomaly detection run in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "detection",
			Name:      "anomalies_total",
			Help:      "Total number of anomalies detected",
		},
		[]string{"severity", "type"},
	)

	// Cost feed metrics
	costFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "feed",
			Name:      "fetch_total",
			Help:      "Total number of cost data fetches",
		},
		[]string{"status"},
	)

	costFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "costwatch",
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of cost data fetches in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Alert metrics
	alertsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "alerting",
			Name:      "dispatched_total",
			Help:      "Total number of alerts dispatched",
		},
		[]string{"severity"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDetectionRun records a detection run outcome and its duration
func RecordDetectionRun(status string, duration time.Duration) {
	detectionRunsTotal.WithLabelValues(status).Inc()
	detectionRunDuration.Observe(duration.Seconds())
}

// RecordAnomaly records a detected anomaly by severity and type
func RecordAnomaly(severity, anomalyType string) {
	anomaliesDetectedTotal.WithLabelValues(severity, anomalyType).Inc()
}

// RecordCostFetch records a cost feed fetch outcome and its duration
func RecordCostFetch(status string, duration time.Duration) {
	costFetchTotal.WithLabelValues(status).Inc()
	costFetchDuration.Observe(duration.Seconds())
}

// RecordAlertDispatch records dispatched alerts by severity
func RecordAlertDispatch(severity string, count int) {
	alertsDispatchedTotal.WithLabelValues(severity).Add(float64(count))
}
