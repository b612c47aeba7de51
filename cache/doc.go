// Package cache provides a generic, bounded, in-memory key/value cache with
// least-recently-used eviction, absolute TTL expiration, optional on-miss
// loading, and lightweight statistics.
//
// Design
//
//   - Storage: a map[K]int32 indexes entries that live in an arena slice.
//     The arena also carries a doubly linked MRU↔LRU list whose links are
//     arena indices, bounded by two sentinel slots. Freed slots are recycled.
//     All operations are O(1) expected; Keys and the sweep are O(n).
//
//   - Concurrency: one sync.RWMutex guards map, arena and list together.
//     Lookups run under the read lock, including promotion on hit; a small
//     dedicated mutex serializes those promotions among concurrent readers.
//     Insertion, eviction, removal, expiration and Clear take the write lock.
//     The Loader always runs outside the cache locks.
//
//   - Eviction: inserting a new key into a full cache evicts exactly the
//     tail-adjacent (least recently used) entry.
//
//   - TTL: an entry is expired once now - createdAt > Options.TTL. Expired
//     entries are invisible to Get and ContainsKey, removed lazily by Get,
//     and reclaimed by a background sweep every Options.CleanupInterval.
//     Size and Keys may still count entries that expired but were not swept.
//
//   - Loading: on miss, Get and GetOrLoad call Options.Loader. Concurrent
//     loads of one key are coalesced (singleflight). Get hides loader errors;
//     GetOrLoad returns them.
//
//   - Observability: Stats returns a StatsSnapshot of seven atomic counters.
//     Options.Metrics receives Hit/Miss/Evict/Size/Load/Put signals (see the
//     metrics/prom and metrics/otel adapters), Options.Logger receives
//     logrus events, Options.OnEvict is called for every eviction.
//
// Basic usage
//
//	opt := cache.DefaultOptions[string, []byte]()
//	opt.Capacity = 10_000
//	c, err := cache.New(opt)
//	if err != nil {
//	    return err
//	}
//	defer c.Shutdown()
//
//	_ = c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// With a Loader
//
//	opt := cache.DefaultOptions[string, string]()
//	opt.Loader = cache.LoaderFunc[string, string](func(ctx context.Context, k string) (string, bool, error) {
//	    // e.g. fetch from DB; return ok=false when the key does not exist
//	    return "v:" + k, true, nil
//	})
//	c, _ := cache.New(opt)
//	v, err := c.GetOrLoad(ctx, "key")
//
// Thread-safety & complexity
//
// All methods on LRU are safe for concurrent use. Shutdown stops only the
// background sweep; the cache keeps serving requests afterwards.
package cache
