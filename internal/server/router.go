// internal/server/router.go
//
// chi router for the API worker and the bare metrics listener.
//
/*
Context
--------
The API worker serves:

  • GET /healthz             – 200 when every Checker passes, 503 otherwise.
  • GET /metrics             – Prometheus exposition (only when telemetry
                               is enabled at all).
  • GET /api/server/version  – build metadata, verbatim.
  • GET /api/server/features – resolved environment, workers, and flags.

The chain is RealIP (trusted proxies) → Recoverer → Security → APIMetrics.
*/
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AdeptTravel/adept-runtime/internal/config"
	"github.com/AdeptTravel/adept-runtime/internal/middleware"
)

// Checker is one dependency probed by /healthz.
type Checker func(ctx context.Context) error

// Deps are the collaborators the router needs.  Gatherer may be nil when
// telemetry is disabled; API may be nil to skip request metrics.
type Deps struct {
	Config   *config.Config
	Gatherer prometheus.Gatherer
	API      middleware.Recorder
	Checks   map[string]Checker
}

// NewRouter builds the API handler.
func NewRouter(d Deps) (http.Handler, error) {
	trusted, err := middleware.ParseTrusted(d.Config.Network.TrustedProxies)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP(trusted))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	if d.API != nil {
		r.Use(middleware.APIMetrics(d.API, config.IgnoredMetricRoutes))
	}

	r.Get("/healthz", healthHandler(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/server", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, d.Config.BuildMetadata)
		})
		r.Get("/features", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"environment": d.Config.Environment,
				"workers":     d.Config.Workers,
				"telemetry":   d.Config.Telemetry,
			})
		})
	})
	return r, nil
}

// MetricsHandler is the whole handler of a worker's metrics listener.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}

func healthHandler(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				zap.S().Warnw("health check failed", "check", name, "err", err)
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}
