// Package prom exports cache signals as Prometheus metrics.
package prom

import (
	"github.com/IvanBrykalov/ttlcache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	puts    prometheus.Counter
	evicts  *prometheus.CounterVec
	loads   *prometheus.CounterVec
	sizeEnt prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
//
// It returns the registration error, e.g. when two adapters share a registry
// with the same namespace, subsystem and labels.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) (*Adapter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Cache hits"),
		misses: counter("misses_total", "Cache misses"),
		puts:   counter("puts_total", "Cache writes"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "loads_total",
				Help:        "Loader calls by result",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{a.hits, a.misses, a.puts, a.evicts, a.loads, a.sizeEnt} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// MustNew is like New but panics on registration failure.
func MustNew(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	a, err := New(reg, ns, sub, constLabels)
	if err != nil {
		panic(err)
	}
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Put increments the write counter.
func (a *Adapter) Put() { a.puts.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Load counts a Loader call under result="ok" or result="error".
func (a *Adapter) Load(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	a.loads.WithLabelValues(result).Inc()
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) {
	a.sizeEnt.Set(float64(entries))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
