// Package warmer pre-populates a cache by loading a known set of keys with
// bounded concurrency.
package warmer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/IvanBrykalov/ttlcache/cache"
)

// Defaults applied when the corresponding Options field is zero.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 60 * time.Second
)

// Putter is the part of a cache the Warmer writes to. *cache.LRU satisfies it.
type Putter[K comparable, V any] interface {
	Put(k K, v V) error
}

// Options configures a Warmer.
type Options struct {
	// Concurrency bounds the number of loads in flight. Zero => DefaultConcurrency.
	Concurrency int
	// Timeout bounds a whole Warm call. Zero => DefaultTimeout.
	Timeout time.Duration
	// Logger receives per-key failures (Warn) and the summary (Info). Nil => discard.
	Logger logrus.FieldLogger
}

// Result summarizes one Warm call.
type Result struct {
	Success int64
	Failed  int64
	Elapsed time.Duration
}

// Total is Success + Failed.
func (r Result) Total() int64 { return r.Success + r.Failed }

func (r Result) String() string {
	return fmt.Sprintf("Result{success=%d, failed=%d, elapsed=%s}", r.Success, r.Failed, r.Elapsed)
}

// Warmer loads keys through a cache.Loader and stores the values in a target
// cache. It is safe to call Warm from several goroutines.
type Warmer[K comparable, V any] struct {
	loader      cache.Loader[K, V]
	concurrency int
	timeout     time.Duration
	log         logrus.FieldLogger
}

// New validates opt and returns a Warmer. Negative Concurrency or Timeout
// values are rejected with an error wrapping cache.ErrInvalidOptions.
func New[K comparable, V any](loader cache.Loader[K, V], opt Options) (*Warmer[K, V], error) {
	if loader == nil {
		return nil, cache.ErrNoLoader
	}
	if opt.Concurrency < 0 {
		return nil, fmt.Errorf("%w: warmer concurrency must be positive, got %d", cache.ErrInvalidOptions, opt.Concurrency)
	}
	if opt.Timeout < 0 {
		return nil, fmt.Errorf("%w: warmer timeout must be positive, got %s", cache.ErrInvalidOptions, opt.Timeout)
	}
	if opt.Concurrency == 0 {
		opt.Concurrency = DefaultConcurrency
	}
	if opt.Timeout == 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opt.Logger = l
	}
	return &Warmer[K, V]{
		loader:      loader,
		concurrency: opt.Concurrency,
		timeout:     opt.Timeout,
		log:         opt.Logger,
	}, nil
}

// Warm loads every key and puts the produced values into target.
//
// A key counts as a success only if its value was stored before Warm
// returned. Keys whose Loader reported no value or failed, keys that were
// still loading when the deadline (Options.Timeout or ctx) passed, and keys
// never started because of the deadline all count as failures. Values that
// arrive after Warm returned are dropped.
func (w *Warmer[K, V]) Warm(ctx context.Context, target Putter[K, V], keys []K) Result {
	if len(keys) == 0 {
		return Result{}
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		closed  bool
		success int64
		wg      sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(w.concurrency))

	for _, k := range keys {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(k K) {
			defer wg.Done()
			defer sem.Release(1)

			v, ok := w.loadOne(ctx, k)
			if !ok {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			if err := target.Put(k, v); err != nil {
				w.log.WithField("key", k).WithError(err).Warn("warmer: put failed")
				return
			}
			success++
		}(k)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		w.log.WithError(ctx.Err()).Warn("warmer: deadline reached, abandoning unfinished loads")
	}

	mu.Lock()
	closed = true
	res := Result{
		Success: success,
		Failed:  int64(len(keys)) - success,
		Elapsed: time.Since(start),
	}
	mu.Unlock()

	w.log.WithFields(logrus.Fields{
		"success": res.Success,
		"failed":  res.Failed,
		"elapsed": res.Elapsed,
	}).Info("warmer: warming complete")
	return res
}

// loadOne runs the Loader for k and reports whether a value was produced.
func (w *Warmer[K, V]) loadOne(ctx context.Context, k K) (V, bool) {
	v, ok, err := w.loader.Load(ctx, k)
	if err != nil {
		w.log.WithField("key", k).WithError(cache.NewLoadError(k, err)).Warn("warmer: load failed")
		var zero V
		return zero, false
	}
	return v, ok
}
