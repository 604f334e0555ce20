// internal/config/repository.go
//
// Process-wide cache around Resolve.
//
/*
Context
--------
Repository owns the single *Config slot.  Get resolves on first use and
caches the result in an `atomic.Pointer` for lock-free reads.  Invalidate
clears the slot so the next Get re-reads the Source; test harnesses call
it after mutating the environment.

Two goroutines racing on an empty slot may each resolve once.  Both
results are equal for the same snapshot, so the last store wins and no
caller can observe a difference.

Instrumentation
---------------
  • DEBUG span - cache hit is silent, cache miss logs "config resolving".
  • INFO  span - "config resolved" with workers, environment, and port.
  • ERROR span - snapshot or resolution failure.
*/
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// Source yields the raw snapshot a resolution runs against.
type Source func() (RawEnvironment, error)

// ProcessEnv snapshots os.Environ.  It is the Source used when nothing else
// is configured.
func ProcessEnv() (RawEnvironment, error) {
	return FromEnviron(os.Environ()), nil
}

// Static returns a Source that always yields a copy of raw.
func Static(raw RawEnvironment) Source {
	return func() (RawEnvironment, error) { return raw.Clone(), nil }
}

// Repository memoises one resolved Config.  The zero value is not usable;
// call NewRepository.
type Repository struct {
	source  Source
	current atomic.Pointer[Config]
}

// NewRepository wires src into an empty cache.  A nil src means ProcessEnv.
func NewRepository(src Source) *Repository {
	if src == nil {
		src = ProcessEnv
	}
	return &Repository{source: src}
}

// Get returns the cached Config, resolving it first if the slot is empty.
// Every caller shares the same instance and must not mutate it.
func (r *Repository) Get() (*Config, error) {
	if cfg := r.current.Load(); cfg != nil {
		return cfg, nil
	}

	zap.S().Debugw("config resolving")
	raw, err := r.source()
	if err != nil {
		zap.S().Errorw("config snapshot failed", "err", err)
		return nil, fmt.Errorf("config snapshot: %w", err)
	}

	cfg, err := Resolve(raw)
	if err != nil {
		zap.S().Errorw("config resolution failed", "err", err)
		return nil, err
	}

	r.current.Store(cfg)
	zap.S().Infow("config resolved",
		"workers", cfg.Workers,
		"environment", cfg.Environment,
		"port", cfg.Port,
		"redis_source", cfg.Queue.Connection.Source.String(),
		"telemetry", cfg.Telemetry.Enabled,
	)
	return cfg, nil
}

// Invalidate empties the slot.  It has no other side effects.
func (r *Repository) Invalidate() { r.current.Store(nil) }
