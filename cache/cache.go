package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IvanBrykalov/ttlcache/internal/singleflight"
)

// LRU is a bounded in-memory KV store with LRU eviction and absolute TTL.
// All methods are safe for concurrent use by multiple goroutines.
//
// Locking: mu guards the key map, the arena and the list as one unit. Hits
// promote entries while holding only mu.RLock; listMu serializes those
// promotions among readers. Writers hold mu.Lock, which already excludes
// every reader, so they never take listMu.
type LRU[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu     sync.RWMutex
	listMu sync.Mutex
	items  map[K]int32
	list   *recency[K, V]

	opt   Options[K, V]
	ttl   int64 // nanoseconds; <= 0 disables expiration
	stats Stats

	// singleflight group for coalescing concurrent loads.
	sf singleflight.Group[K, loaded[V]]

	// background sweep
	stopSweep    context.CancelFunc
	sweepDone    chan struct{}
	shutdownOnce sync.Once
}

// loaded is the shared result of one Loader flight.
type loaded[V any] struct {
	val V
	ok  bool
}

// New validates opt and constructs a cache with a running background sweep.
// Defaults for unset collaborators:
//   - nil Metrics -> NoopMetrics
//   - nil Logger  -> logrus logger writing to io.Discard
//   - nil Clock   -> time.Now
func New[K comparable, V any](opt Options[K, V]) (*LRU[K, V], error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	opt = opt.withDefaults()

	c := &LRU[K, V]{
		items: make(map[K]int32, opt.Capacity),
		list:  newRecency[K, V](opt.Capacity),
		opt:   opt,
		ttl:   int64(opt.TTL),
	}
	c.startSweep()
	return c, nil
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and a presence flag.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	v, err := c.GetOrLoad(context.Background(), k)
	return v, err == nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key.
func (c *LRU[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if isNil(k) {
		return zero, ErrNilKey
	}
	// fast path
	if v, ok := c.lookup(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}
	return c.load(ctx, k)
}

// Put inserts or updates k→v. Updating a key keeps its creation time, so
// the TTL is not extended.
func (c *LRU[K, V]) Put(k K, v V) error {
	if isNil(k) {
		return ErrNilKey
	}
	if isNil(v) {
		return ErrNilValue
	}
	now := c.now()

	c.mu.Lock()
	if idx, ok := c.items[k]; ok {
		// In-place update: the TTL keeps counting from creation.
		n := c.list.at(idx)
		n.val = v
		n.touch(now)
		c.list.moveToFront(idx)
	} else {
		if len(c.items) >= c.opt.Capacity {
			c.evictLRULocked()
		}
		idx := c.list.alloc(k, v, now)
		c.list.pushFront(idx)
		c.items[k] = idx
	}
	size := len(c.items)
	c.mu.Unlock()

	if c.opt.RecordStats {
		c.stats.recordPut()
	}
	c.opt.Metrics.Put()
	c.opt.Metrics.Size(size)
	return nil
}

// PutAll stores every pair in entries using Put.
func (c *LRU[K, V]) PutAll(entries map[K]V) error {
	for k, v := range entries {
		if err := c.Put(k, v); err != nil {
			return fmt.Errorf("put all: %w", err)
		}
	}
	return nil
}

// Remove deletes an entry by key. Returns true if the entry existed.
// A nil key is rejected and reports false.
func (c *LRU[K, V]) Remove(k K) bool {
	if isNil(k) {
		return false
	}
	c.mu.Lock()
	idx, ok := c.items[k]
	if ok {
		c.removeLocked(idx)
	}
	size := len(c.items)
	c.mu.Unlock()

	if ok {
		// Explicit Remove is not counted as an eviction.
		c.opt.Metrics.Size(size)
	}
	return ok
}

// ContainsKey reports whether k is present and not expired.
// A nil key is rejected and reports false.
func (c *LRU[K, V]) ContainsKey(k K) bool {
	if isNil(k) {
		return false
	}
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.items[k]
	return ok && !c.list.at(idx).expired(now, c.ttl)
}

// Size returns the number of resident entries.
func (c *LRU[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// IsEmpty reports whether the cache holds no entries.
func (c *LRU[K, V]) IsEmpty() bool { return c.Size() == 0 }

// Clear drops every entry and resets the list to its two sentinels.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]int32, c.opt.Capacity)
	c.list.reset(c.opt.Capacity)
	c.mu.Unlock()
	c.opt.Metrics.Size(0)
}

// Keys returns resident keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	// Readers may be promoting concurrently; walk links under listMu.
	c.listMu.Lock()
	defer c.listMu.Unlock()

	out := make([]K, 0, len(c.items))
	c.list.each(func(_ int32, n *node[K, V]) bool {
		out = append(out, n.key)
		return true
	})
	return out
}

// Stats returns a snapshot of the counters. All zero when RecordStats is off.
func (c *LRU[K, V]) Stats() StatsSnapshot { return c.stats.Snapshot() }

// ResetStats zeroes the counters.
func (c *LRU[K, V]) ResetStats() { c.stats.Reset() }

// Capacity returns the configured entry limit.
func (c *LRU[K, V]) Capacity() int { return c.opt.Capacity }

func (c *LRU[K, V]) String() string {
	return fmt.Sprintf("LRU{size=%d, capacity=%d, stats=%s}", c.Size(), c.opt.Capacity, c.Stats())
}

// ---- read path ----

// lookup returns a live value and promotes it, or reports a miss. An expired
// entry found here is removed under the write lock after re-checking it.
func (c *LRU[K, V]) lookup(k K) (V, bool) {
	now := c.now()
	expired := false

	c.mu.RLock()
	if idx, ok := c.items[k]; ok {
		n := c.list.at(idx)
		if !n.expired(now, c.ttl) {
			c.listMu.Lock()
			n.touch(now)
			c.list.moveToFront(idx)
			c.listMu.Unlock()
			v := n.val
			c.mu.RUnlock()

			if c.opt.RecordStats {
				c.stats.recordHit()
			}
			c.opt.Metrics.Hit()
			return v, true
		}
		expired = true
	}
	c.mu.RUnlock()

	if c.opt.RecordStats {
		c.stats.recordMiss()
	}
	c.opt.Metrics.Miss()
	if expired {
		c.removeIfExpired(k)
	}
	var zero V
	return zero, false
}

// peek returns a live value without promotion or stats.
func (c *LRU[K, V]) peek(k K) (V, bool) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx, ok := c.items[k]; ok {
		if n := c.list.at(idx); !n.expired(now, c.ttl) {
			return n.val, true
		}
	}
	var zero V
	return zero, false
}

// removeIfExpired drops k if it is still expired once the write lock is held;
// another goroutine may have removed and re-inserted it in between.
func (c *LRU[K, V]) removeIfExpired(k K) {
	c.mu.Lock()
	idx, ok := c.items[k]
	if !ok || !c.list.at(idx).expired(c.now(), c.ttl) {
		c.mu.Unlock()
		return
	}
	key, val := c.removeLocked(idx)
	if c.opt.RecordStats {
		c.stats.recordExpired()
	}
	c.opt.Metrics.Evict(EvictTTL)
	if cb := c.opt.OnEvict; cb != nil {
		cb(key, val, EvictTTL)
	}
	size := len(c.items)
	c.mu.Unlock()
	c.opt.Metrics.Size(size)
}

// load runs the Loader for k outside every cache lock and stores a produced value.
func (c *LRU[K, V]) load(ctx context.Context, k K) (V, error) {
	res, _, err := c.sf.Do(ctx, k, func() (loaded[V], error) {
		// double-check after flight join: a previous flight may have stored it
		if v, ok := c.peek(k); ok {
			return loaded[V]{val: v, ok: true}, nil
		}
		v, ok, err := c.opt.Loader.Load(ctx, k)
		if err != nil {
			if c.opt.RecordStats {
				c.stats.recordLoadFail()
			}
			c.opt.Metrics.Load(false)
			c.opt.Logger.WithField("key", k).WithError(err).Warn("cache: loader failed")
			return loaded[V]{}, NewLoadError(k, err)
		}
		if c.opt.RecordStats {
			c.stats.recordLoad()
		}
		c.opt.Metrics.Load(true)
		if !ok || isNil(v) {
			return loaded[V]{}, nil
		}
		if err := c.Put(k, v); err != nil {
			return loaded[V]{}, err
		}
		return loaded[V]{val: v, ok: true}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if !res.ok {
		var zero V
		return zero, ErrNotFound
	}
	return res.val, nil
}

// -------------------- internals (mu held) --------------------

// evictLRULocked drops the tail-adjacent entry. No-op on an empty list.
func (c *LRU[K, V]) evictLRULocked() {
	idx := c.list.back()
	if idx == nilIdx {
		return
	}
	key, val := c.removeLocked(idx)
	if c.opt.RecordStats {
		c.stats.recordEviction()
	}
	c.opt.Metrics.Evict(EvictCapacity)
	c.opt.Logger.WithField("key", key).Debug("cache: evicted least recently used entry")
	if cb := c.opt.OnEvict; cb != nil {
		// Note: called under the write lock; callbacks must not re-enter the cache.
		cb(key, val, EvictCapacity)
	}
}

// removeLocked unlinks idx, drops its map entry and recycles the slot.
// It returns the removed key and value.
func (c *LRU[K, V]) removeLocked(idx int32) (K, V) {
	n := c.list.at(idx)
	key, val := n.key, n.val
	delete(c.items, key)
	c.list.unlink(idx)
	c.list.release(idx)
	return key, val
}

func (c *LRU[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}
