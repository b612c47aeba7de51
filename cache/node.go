package cache

// Arena slots 0 and 1 are the list sentinels. They never hold data.
const (
	headIdx int32 = 0 // MRU side
	tailIdx int32 = 1 // LRU side
	nilIdx  int32 = -1
)

// node is an arena-resident entry. List links are arena indices instead of
// pointers, so unlink/relink stays O(1) and slots can be recycled.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: prev points towards head (MRU), next towards tail (LRU).
	prev int32
	next int32

	// UnixNano timestamps. created drives TTL; accessed is refreshed on every hit.
	// accessed is written by readers, so it is guarded by listMu (or the write lock).
	created  int64
	accessed int64
}

// expired reports whether the entry outlived ttl at time now.
// A non-positive ttl means entries never expire.
func (n *node[K, V]) expired(now, ttl int64) bool {
	if ttl <= 0 {
		return false
	}
	return now-n.created > ttl
}

// touch refreshes the last-access timestamp.
func (n *node[K, V]) touch(now int64) { n.accessed = now }
