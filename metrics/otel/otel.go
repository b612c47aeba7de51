// Package otel reports cache signals through an OpenTelemetry meter.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/IvanBrykalov/ttlcache/cache"
)

// Instrument names, relative to the prefix given to New.
const (
	hitsName   = "hits"
	missesName = "misses"
	putsName   = "puts"
	evictsName = "evictions"
	loadsName  = "loads"
	sizeName   = "size"
)

// Adapter implements cache.Metrics on top of OpenTelemetry instruments.
type Adapter struct {
	ctx   context.Context
	attrs metric.MeasurementOption

	hits   metric.Int64Counter
	misses metric.Int64Counter
	puts   metric.Int64Counter
	evicts metric.Int64Counter
	loads  metric.Int64Counter
	size   metric.Int64Gauge

	evictCapacity metric.MeasurementOption
	evictTTL      metric.MeasurementOption
	loadOK        metric.MeasurementOption
	loadErr       metric.MeasurementOption
}

// New creates the instruments on meter. Names are prefix + "." + instrument,
// e.g. "cache.hits"; an empty prefix defaults to "cache". attrs are attached
// to every measurement.
func New(meter metric.Meter, prefix string, attrs ...attribute.KeyValue) (*Adapter, error) {
	if meter == nil {
		return nil, fmt.Errorf("otel metrics: meter is required")
	}
	if prefix == "" {
		prefix = "cache"
	}
	name := func(s string) string { return prefix + "." + s }

	a := &Adapter{
		ctx:   context.Background(),
		attrs: metric.WithAttributes(attrs...),
	}
	with := func(k, v string) metric.MeasurementOption {
		all := append(append([]attribute.KeyValue{}, attrs...), attribute.String(k, v))
		return metric.WithAttributes(all...)
	}
	a.evictCapacity = with("reason", cache.EvictCapacity.String())
	a.evictTTL = with("reason", cache.EvictTTL.String())
	a.loadOK = with("result", "ok")
	a.loadErr = with("result", "error")

	var err error
	counter := func(dst *metric.Int64Counter, n, desc string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name(n), metric.WithDescription(desc), metric.WithUnit("1"))
		if err != nil {
			err = fmt.Errorf("create %s counter: %w", n, err)
		}
	}
	counter(&a.hits, hitsName, "Cache hits")
	counter(&a.misses, missesName, "Cache misses")
	counter(&a.puts, putsName, "Cache writes")
	counter(&a.evicts, evictsName, "Cache evictions by reason")
	counter(&a.loads, loadsName, "Loader calls by result")
	if err != nil {
		return nil, err
	}

	a.size, err = meter.Int64Gauge(name(sizeName),
		metric.WithDescription("Number of resident entries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s gauge: %w", sizeName, err)
	}
	return a, nil
}

func (a *Adapter) Hit()  { a.hits.Add(a.ctx, 1, a.attrs) }
func (a *Adapter) Miss() { a.misses.Add(a.ctx, 1, a.attrs) }
func (a *Adapter) Put()  { a.puts.Add(a.ctx, 1, a.attrs) }

// Evict counts an eviction under its reason attribute.
func (a *Adapter) Evict(r cache.EvictReason) {
	opt := a.evictCapacity
	if r == cache.EvictTTL {
		opt = a.evictTTL
	}
	a.evicts.Add(a.ctx, 1, opt)
}

// Load counts a Loader call under result="ok" or result="error".
func (a *Adapter) Load(ok bool) {
	opt := a.loadOK
	if !ok {
		opt = a.loadErr
	}
	a.loads.Add(a.ctx, 1, opt)
}

// Size records the current number of resident entries.
func (a *Adapter) Size(entries int) { a.size.Record(a.ctx, int64(entries), a.attrs) }

var _ cache.Metrics = (*Adapter)(nil)
