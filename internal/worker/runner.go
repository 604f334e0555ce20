// Package worker starts the roles named by the resolved topology and
// keeps them running until the context ends.
//
//	api                – the chi API on ADEPT_HOST:ADEPT_PORT, plus a
//	                     metrics listener on the API metrics port.
//	background-worker  – the queue consumer, plus a metrics listener on the
//	                     microservices metrics port.
//
// Metrics listeners only start when telemetry is enabled.  Every role runs
// in its own errgroup goroutine; the first failure cancels the rest.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AdeptTravel/adept-runtime/internal/config"
	"github.com/AdeptTravel/adept-runtime/internal/queue"
	"github.com/AdeptTravel/adept-runtime/internal/server"
)

// ErrNoWorkers is returned when include and exclude cancel out.
var ErrNoWorkers = errors.New("no workers enabled")

// Consumer is the queue side of the background worker.
type Consumer interface {
	Consume(ctx context.Context, h queue.Handler) error
}

// Runner owns the listeners and the consumer loop.
type Runner struct {
	Config   *config.Config
	API      http.Handler
	Gatherer prometheus.Gatherer
	Consumer Consumer
	Handler  queue.Handler
	Log      *zap.SugaredLogger

	// ShutdownGrace bounds http.Server.Shutdown.  Zero means 10 s.
	ShutdownGrace time.Duration
}

// Run blocks until ctx ends or a role fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}
	cfg := r.Config
	log := r.Log
	if log == nil {
		log = zap.S()
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.HasWorker(config.WorkerAPI) {
		r.serve(ctx, g, "api", server.New(server.Addr(cfg.Host, cfg.Port), r.API))
		if cfg.Telemetry.Enabled && r.Gatherer != nil {
			r.serve(ctx, g, "api-metrics",
				server.New(server.Addr(cfg.Host, cfg.Telemetry.APIPort), server.MetricsHandler(r.Gatherer)))
		}
	}

	if cfg.HasWorker(config.WorkerBackground) {
		g.Go(func() error {
			log.Infow("worker started", "worker", config.WorkerBackground, "queues", cfg.Queue.Names)
			return r.Consumer.Consume(ctx, r.Handler)
		})
		if cfg.Telemetry.Enabled && r.Gatherer != nil {
			r.serve(ctx, g, "background-metrics",
				server.New(server.Addr(cfg.Host, cfg.Telemetry.MicroservicesPort), server.MetricsHandler(r.Gatherer)))
		}
	}

	return g.Wait()
}

// validate checks every role's collaborators before anything starts, so a
// misconfigured runner never leaves a listener bound.
func (r *Runner) validate() error {
	cfg := r.Config
	if len(cfg.Workers) == 0 {
		return ErrNoWorkers
	}
	if cfg.HasWorker(config.WorkerAPI) && r.API == nil {
		return fmt.Errorf("%s worker needs an API handler", config.WorkerAPI)
	}
	if cfg.HasWorker(config.WorkerBackground) && (r.Consumer == nil || r.Handler == nil) {
		return fmt.Errorf("%s worker needs a consumer and a handler", config.WorkerBackground)
	}
	return nil
}

func (r *Runner) serve(ctx context.Context, g *errgroup.Group, name string, srv *http.Server) {
	log := r.Log
	if log == nil {
		log = zap.S()
	}
	grace := r.ShutdownGrace
	if grace == 0 {
		grace = 10 * time.Second
	}

	g.Go(func() error {
		log.Infow("listener started", "listener", name, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s listener: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warnw("graceful shutdown failed", "listener", name, "err", err)
			return srv.Close()
		}
		return nil
	})
}
