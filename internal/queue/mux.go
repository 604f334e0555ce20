package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownJob is returned by Mux.Dispatch for a job name with no
// registered handler.  The broker treats it like any handler failure, so
// the job is retried and then parked on the failed list.
var ErrUnknownJob = errors.New("unknown job")

// Mux routes jobs to handlers by Job.Name.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	rec      SampleRecorder
}

// NewMux returns an empty Mux.  rec may be nil.
func NewMux(rec SampleRecorder) *Mux {
	return &Mux{handlers: make(map[string]Handler), rec: rec}
}

// Handle registers h for name, replacing any earlier handler.
func (m *Mux) Handle(name string, h Handler) {
	m.mu.Lock()
	m.handlers[name] = h
	m.mu.Unlock()
}

// Names lists the registered job names, sorted.
func (m *Mux) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handlers))
	for n := range m.handlers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs the handler registered for job.Name and times it.  It has
// the Handler signature so it can be passed straight to Broker.Consume.
func (m *Mux) Dispatch(ctx context.Context, job Job) error {
	m.mu.RLock()
	h, ok := m.handlers[job.Name]
	m.mu.RUnlock()
	if !ok {
		if m.rec != nil {
			m.rec.AddToCounter("unknown_total", 1)
		}
		return fmt.Errorf("%w: %q", ErrUnknownJob, job.Name)
	}

	start := time.Now()
	err := h(ctx, job)
	if m.rec != nil {
		m.rec.AddToHistogram("handler_seconds", time.Since(start).Seconds())
	}
	return err
}
