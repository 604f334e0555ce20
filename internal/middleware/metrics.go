// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recorder is the slice of metrics.Group the API middleware needs.
type Recorder interface {
	AddToCounter(name string, value float64)
	AddToHistogram(name string, value float64)
}

// APIMetrics counts requests and observes latency, skipping ignored paths.
// A nil rec disables it entirely.
func APIMetrics(rec Recorder, ignore []string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(ignore))
	for _, p := range ignore {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			rec.AddToCounter("requests_total", 1)
			if ww.Status() >= http.StatusInternalServerError {
				rec.AddToCounter("errors_total", 1)
			}
			rec.AddToHistogram("request_duration_seconds", time.Since(start).Seconds())
		})
	}
}
