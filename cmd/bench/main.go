// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/IvanBrykalov/ttlcache/cache"
	pmet "github.com/IvanBrykalov/ttlcache/metrics/prom"
	"github.com/IvanBrykalov/ttlcache/warmer"
)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries)")
		ttl      = flag.Duration("ttl", cache.DefaultTTL, "entry TTL measured from creation (0 = never expire)")
		cleanup  = flag.Duration("cleanup", cache.DefaultCleanupInterval, "background sweep interval")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		warm        = flag.Int("warm", 0, "keys to warm before the run (0 = cap/2)")
		warmWorkers = flag.Int("warm-concurrency", warmer.DefaultConcurrency, "concurrent loads while warming")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.WithField("addr", *pprofAddr).Info("pprof: serving")
			log.WithError(http.ListenAndServe(*pprofAddr, nil)).Error("pprof: server stopped")
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics, err := pmet.New(nil, "ttlcache", "bench", nil)
	if err != nil {
		log.WithError(err).Fatal("register metrics")
	}
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.WithField("addr", *metricsAddr).Info("metrics: serving")
		log.WithError(http.ListenAndServe(*metricsAddr, nil)).Error("metrics: server stopped")
	}()

	// ---- Build cache ----
	// Misses are filled by a synthetic loader so the read path covers GetOrLoad.
	source := cache.LoaderFunc[string, string](func(_ context.Context, k string) (string, bool, error) {
		return "v:" + k, true, nil
	})

	opt := cache.DefaultOptions[string, string]()
	opt.Capacity = *capacity
	opt.TTL = *ttl
	opt.CleanupInterval = *cleanup
	opt.Metrics = metrics
	opt.Loader = source
	opt.Logger = log
	c, err := cache.New(opt)
	if err != nil {
		log.WithError(err).Fatal("build cache")
	}
	defer c.Shutdown()

	// ---- Warm the hottest keys to get a realistic hit-rate ----
	n := *warm
	if n == 0 {
		n = *capacity / 2
	}
	if n > *keys {
		n = *keys
	}
	w, err := warmer.New[string, string](source, warmer.Options{Concurrency: *warmWorkers, Logger: log})
	if err != nil {
		log.WithError(err).Fatal("build warmer")
	}
	warmKeys := make([]string, n)
	for i := range warmKeys {
		warmKeys[i] = "k:" + strconv.Itoa(i)
	}
	res := w.Warm(context.Background(), c, warmKeys)
	c.ResetStats()

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for id := 0; id < workersN; id++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					c.Get(keyByZipf())
				} else {
					atomic.AddUint64(&writes, 1)
					_ = c.Put(keyByZipf(), "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(id)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	st := c.Stats()

	out := os.Stdout
	fmt.Fprintf(out, "cap=%d ttl=%v cleanup=%v workers=%d keys=%d dur=%v seed=%d\n",
		*capacity, *ttl, *cleanup, workersN, *keys, elapsed, seedBase)
	fmt.Fprintf(out, "warm: %s\n", res)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&reads), atomic.LoadUint64(&writes))
	fmt.Fprintf(out, "hits=%d  misses=%d  hit-rate=%.2f%%  loads=%d  evictions=%d  expired=%d\n",
		st.Hits, st.Misses, st.HitRate()*100, st.Loads, st.Evictions, st.Expired)
	fmt.Fprintf(out, "Size()=%d\n", c.Size())
}
