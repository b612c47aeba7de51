package cache

import "context"

// Cache is an in-memory key/value cache with LRU eviction and TTL expiration.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity for operations is O(1): a map lookup plus constant-time
// list adjustments under the cache lock. Keys is O(n).
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, the entry is promoted to most-recently-used.
	// On miss, the configured Loader (if any) is consulted; loader failures
	// are counted and logged, never returned.
	Get(k K) (V, bool)

	// GetOrLoad behaves like Get but reports why no value was produced:
	// ErrNilKey, ErrNoLoader, ErrNotFound or a *LoadError.
	// Concurrent loads for the same key are coalesced (singleflight).
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Put inserts or updates k→v and promotes the entry to most-recently-used.
	// Inserting a new key into a full cache evicts the least-recently-used entry.
	Put(k K, v V) error

	// PutAll applies Put to every pair. It is not atomic and stops at the
	// first rejected pair.
	PutAll(entries map[K]V) error

	// Remove deletes k if present and returns true on success.
	// A nil key is rejected and reports false.
	Remove(k K) bool

	// ContainsKey reports whether k is present and not expired.
	// It does not change recency and does not remove expired entries.
	// A nil key is rejected and reports false.
	ContainsKey(k K) bool

	// Size returns the number of resident entries, including expired entries
	// that have not been swept yet.
	Size() int

	// IsEmpty reports whether Size is zero.
	IsEmpty() bool

	// Clear removes every entry.
	Clear()

	// Keys returns a copy of the resident keys in MRU→LRU order.
	// Expired-but-unswept keys may be included.
	Keys() []K

	// Stats returns a snapshot of the cache counters.
	Stats() StatsSnapshot

	// Shutdown stops the background sweep. The cache stays usable and keeps
	// its contents. Safe to call more than once.
	Shutdown()
}

// Compile-time check: ensure LRU implements Cache.
var _ Cache[string, int] = (*LRU[string, int])(nil)
