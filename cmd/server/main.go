// cmd/server/main.go
//
// Adept runtime – service entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Snapshot the environment (YAML overlay, Vault refs) and resolve it
//     once through config.Repository.  Any resolution error is fatal.
//
//  3. Start the daily rotating logger at the resolved level.
//
//  4. Build telemetry groups from the resolved flags.
//
//  5. Connect the queue broker and the database.
//
//  6. Run every worker in the resolved topology until SIGINT or SIGTERM.
//     An empty topology is fatal.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AdeptTravel/adept-runtime/internal/config"
	"github.com/AdeptTravel/adept-runtime/internal/database"
	"github.com/AdeptTravel/adept-runtime/internal/logger"
	"github.com/AdeptTravel/adept-runtime/internal/metrics"
	"github.com/AdeptTravel/adept-runtime/internal/queue"
	"github.com/AdeptTravel/adept-runtime/internal/secrets"
	"github.com/AdeptTravel/adept-runtime/internal/server"
	"github.com/AdeptTravel/adept-runtime/internal/worker"
)

const serverEnvPath = "/usr/local/etc/adept-runtime/global.env"

// Job names understood by the background worker.  Anything else fails
// through the broker's retry policy.
const (
	jobConfigReload = "config-reload"
	jobBrokerPing   = "broker-ping"
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	app := kingpin.New("adept-server", "Adept runtime: API and background workers")
	envFile := app.Flag("env-file", "Flat YAML file layered under the process environment").String()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	boot := logger.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Resolve configuration ──────────────────────────────────────
	//
	opts := config.SnapshotOptions{EnvFile: *envFile}
	if os.Getenv("VAULT_ADDR") != "" {
		v, err := secrets.NewVault(5 * time.Minute)
		if err != nil {
			boot.Fatalw("vault client", "err", err)
		}
		opts.Secrets = v
	}
	repo := config.NewRepository(config.SnapshotSource(ctx, opts))
	cfg, err := repo.Get()
	if err != nil {
		boot.Fatalw("resolve configuration", "err", err)
	}

	//
	// ── 2.  File logger at the resolved level ───────────────────────────
	//
	logOut, err := logger.New(logger.Options{
		Root:    config.RootDir(),
		Tee:     runningInTTY(),
		NoColor: cfg.NoColor,
		Level:   cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  Telemetry ──────────────────────────────────────────────────
	//
	reg := prometheus.NewRegistry()
	tel := metrics.New(reg, cfg.Telemetry)
	var gatherer prometheus.Gatherer
	if cfg.Telemetry.Enabled {
		gatherer = reg
	}

	//
	// ── 4.  Collaborators ──────────────────────────────────────────────
	//
	broker := queue.New(cfg.Queue, tel.Jobs)
	broker.Instrument(tel.Repo)
	defer broker.Close()

	checks := map[string]server.Checker{"redis": broker.Ping}
	runner := &worker.Runner{Config: cfg, Gatherer: gatherer, Log: logOut}

	if cfg.HasWorker(config.WorkerAPI) {
		dsn, err := database.DSN(cfg.Database)
		if err != nil {
			logOut.Fatalw("database dsn", "err", err)
		}
		db, err := database.Open(dsn)
		if err != nil {
			logOut.Fatalw("connect database", "err", err)
		}
		defer db.Close()
		logOut.Infow("database online", "host", cfg.Database.Host, "name", cfg.Database.Name)
		checks["database"] = database.HealthCheck(db, tel.Repo)

		deps := server.Deps{Config: cfg, Gatherer: gatherer, Checks: checks}
		if tel.API.Enabled() {
			deps.API = tel.API
		}
		api, err := server.NewRouter(deps)
		if err != nil {
			logOut.Fatalw("build router", "err", err)
		}
		runner.API = api
	}

	if cfg.HasWorker(config.WorkerBackground) {
		jobs := queue.NewMux(tel.Jobs)
		jobs.Handle(jobConfigReload, func(_ context.Context, job queue.Job) error {
			repo.Invalidate()
			fresh, err := repo.Get()
			if err != nil {
				return err
			}
			logOut.Infow("configuration re-resolved", "workers", fresh.Workers, "attempt", job.Made)
			return nil
		})
		jobs.Handle(jobBrokerPing, func(ctx context.Context, _ queue.Job) error {
			return broker.Ping(ctx)
		})
		logOut.Infow("job handlers registered", "jobs", jobs.Names())

		runner.Consumer = broker
		runner.Handler = jobs.Dispatch
	}

	//
	// ── 5.  Run ────────────────────────────────────────────────────────
	//
	logOut.Infow("starting workers", "workers", cfg.Workers, "environment", cfg.Environment)
	if err := runner.Run(ctx); err != nil {
		logOut.Fatalw("workers stopped", "err", err)
	}
	logOut.Infow("shutdown complete")
}
