// Package metrics holds the Prometheus instruments behind the telemetry
// feature flags.  Four groups exist (api, host, jobs, repo); each is
// switched on or off from the resolved config.Telemetry and silently
// drops samples while off.
//
// Instruments are created lazily by name on first use and registered with
// the Registerer handed to New, so tests can use a private registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

const namespace = "adept"

// Group records counters, gauges, and histograms for one subsystem.
type Group struct {
	name string
	reg  prometheus.Registerer

	mu         sync.Mutex
	enabled    bool
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

func newGroup(name string, reg prometheus.Registerer) *Group {
	return &Group{
		name:       name,
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Configure switches the group on or off and returns it for chaining.
func (g *Group) Configure(enabled bool) *Group {
	g.mu.Lock()
	g.enabled = enabled
	g.mu.Unlock()
	return g
}

// Enabled reports the current switch position.
func (g *Group) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// AddToCounter adds value to the named counter.  Negative values panic
// inside client_golang, so they are dropped here.
func (g *Group) AddToCounter(name string, value float64) {
	if value < 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return
	}
	c, ok := g.counters[name]
	if !ok {
		c = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: g.name, Name: name,
			Help: "Counter " + name + " of the " + g.name + " group.",
		})
		c = register(g.reg, c)
		g.counters[name] = c
	}
	c.Add(value)
}

// AddToGauge adds value (possibly negative) to the named gauge.
func (g *Group) AddToGauge(name string, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return
	}
	gg, ok := g.gauges[name]
	if !ok {
		gg = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: g.name, Name: name,
			Help: "Gauge " + name + " of the " + g.name + " group.",
		})
		gg = register(g.reg, gg)
		g.gauges[name] = gg
	}
	gg.Add(value)
}

// AddToHistogram observes value on the named histogram.
func (g *Group) AddToHistogram(name string, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return
	}
	h, ok := g.histograms[name]
	if !ok {
		h = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: g.name, Name: name,
			Help:    "Histogram " + name + " of the " + g.name + " group.",
			Buckets: prometheus.DefBuckets,
		})
		h = register(g.reg, h)
		g.histograms[name] = h
	}
	h.Observe(value)
}

// register adopts an already-registered collector with the same
// descriptor instead of failing.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// Telemetry bundles the four groups.
type Telemetry struct {
	API  *Group
	Host *Group
	Jobs *Group
	Repo *Group
}

// New builds the groups against reg and applies the flags in t.  When host
// metrics are on, the Go runtime and process collectors are registered too.
func New(reg prometheus.Registerer, t config.Telemetry) *Telemetry {
	tel := &Telemetry{
		API:  newGroup("api", reg).Configure(t.APIMetrics),
		Host: newGroup("host", reg).Configure(t.HostMetrics),
		Jobs: newGroup("jobs", reg).Configure(t.JobMetrics),
		Repo: newGroup("repo", reg).Configure(t.RepoMetrics),
	}
	if t.HostMetrics {
		register[prometheus.Collector](reg, collectors.NewGoCollector())
		register[prometheus.Collector](reg, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return tel
}
