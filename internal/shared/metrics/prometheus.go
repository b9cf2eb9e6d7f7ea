package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Intake pipeline metrics
	intakesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intakes_created_total",
			Help: "Total number of AI intakes staged",
		},
	)

	intakesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intakes_confirmed_total",
			Help: "Total number of AI intakes confirmed",
		},
	)

	itemsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_items_parsed_total",
			Help: "Total number of parsed items staged, by item type",
		},
		[]string{"type"},
	)

	itemsMaterialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_items_materialized_total",
			Help: "Total number of parsed items materialized into records",
		},
		[]string{"type"},
	)

	itemsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_items_skipped_total",
			Help: "Total number of parsed items skipped during materialization",
		},
		[]string{"type"},
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_request_duration_seconds",
			Help:    "Extraction gateway request duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	recordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total number of medical records created, by entity",
		},
		[]string{"entity"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordIntakeCreated records a staged intake
func RecordIntakeCreated() {
	intakesCreated.Inc()
}

// RecordIntakeConfirmed records a confirmed intake
func RecordIntakeConfirmed() {
	intakesConfirmed.Inc()
}

// RecordItemParsed records a staged parsed item
func RecordItemParsed(itemType string) {
	itemsParsed.WithLabelValues(itemType).Inc()
}

// RecordItemMaterialized records a materialized parsed item
func RecordItemMaterialized(itemType string) {
	itemsMaterialized.WithLabelValues(itemType).Inc()
}

// RecordItemSkipped records a parsed item skipped during materialization
func RecordItemSkipped(itemType string) {
	itemsSkipped.WithLabelValues(itemType).Inc()
}

// RecordExtraction records an extraction gateway round trip
func RecordExtraction(status string, duration time.Duration) {
	extractionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRecordCreated records a medical record creation
func RecordRecordCreated(entity string) {
	recordsCreated.WithLabelValues(entity).Inc()
}

// RecordDBConnections records active database connections
func RecordDBConnections(count int) {
	dbConnectionsActive.Set(float64(count))
}
