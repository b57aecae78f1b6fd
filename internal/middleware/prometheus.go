package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/cpe-tracker/internal/metrics"
)

// Prometheus observes every request except scrapes of /metrics. Routes are
// labelled by pattern so /edit/1 and /edit/2 share a series.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		metrics.RecordRequest(r.Method, routeLabel(r), rec.status, time.Since(start).Seconds())
	})
}
