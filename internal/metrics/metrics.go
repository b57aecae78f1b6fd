package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RecordsWritten counts successful record mutations by op (create, update, delete).
	RecordsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpe_records_written_total",
			Help: "Total number of CPE record mutations by operation",
		},
		[]string{"op"},
	)

	// CSVExports counts CSV exports served.
	CSVExports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cpe_csv_exports_total",
			Help: "Total number of CSV exports served",
		},
	)

	// Logins counts login attempts by result (success, failure).
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpe_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, RecordsWritten, CSVExports, Logins)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /edit/123 -> /edit/{id}, /delete/45 -> /delete/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncRecordsWritten(op string) {
	RecordsWritten.WithLabelValues(op).Inc()
}

func IncCSVExports() {
	CSVExports.Inc()
}

func IncLogins(result string) {
	Logins.WithLabelValues(result).Inc()
}
