package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ttlcache/cache"
)

func TestAdapter_CountsCacheSignals(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, "app", "cache", prometheus.Labels{"cache": "users"})
	require.NoError(t, err)

	opt := cache.DefaultOptions[string, int]()
	opt.Capacity = 1
	opt.TTL = cache.NoExpiration
	opt.CleanupInterval = time.Hour
	opt.Metrics = m
	c, err := cache.New(opt)
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2)) // evicts a
	c.Get("b")
	c.Get("a")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.puts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.evicts.WithLabelValues("ttl")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sizeEnt))
}

func TestAdapter_LoadResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg, "", "cache", nil)

	m.Load(true)
	m.Load(true)
	m.Load(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))

	n, err := testutil.GatherAndCount(reg, "cache_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "app", "cache", nil)
	require.NoError(t, err)

	_, err = New(reg, "app", "cache", nil)
	require.Error(t, err)
	assert.Panics(t, func() { MustNew(reg, "app", "cache", nil) })
}
