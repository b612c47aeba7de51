package cache

// recency is the arena-backed MRU↔LRU list. It does not know about the key
// map; the engine keeps map membership and list membership in step.
//
// Concurrency: callers hold the engine write lock, or the read lock plus listMu
// for moveToFront.
type recency[K comparable, V any] struct {
	nodes []node[K, V]
	free  []int32 // recycled slots
	n     int     // number of linked data nodes
}

func newRecency[K comparable, V any](capacity int) *recency[K, V] {
	r := &recency[K, V]{}
	r.reset(capacity)
	return r
}

// reset drops every data node and links the two sentinels back together.
func (r *recency[K, V]) reset(capacity int) {
	r.nodes = make([]node[K, V], 2, capacity+2)
	r.nodes[headIdx] = node[K, V]{prev: nilIdx, next: tailIdx}
	r.nodes[tailIdx] = node[K, V]{prev: headIdx, next: nilIdx}
	r.free = r.free[:0]
	r.n = 0
}

// alloc stores key/value in a fresh or recycled slot and returns its index.
// The slot is not linked yet.
func (r *recency[K, V]) alloc(k K, v V, now int64) int32 {
	nd := node[K, V]{key: k, val: v, prev: nilIdx, next: nilIdx, created: now, accessed: now}
	if l := len(r.free); l > 0 {
		idx := r.free[l-1]
		r.free = r.free[:l-1]
		r.nodes[idx] = nd
		return idx
	}
	r.nodes = append(r.nodes, nd)
	return int32(len(r.nodes) - 1)
}

// release zeroes the slot (so it does not pin key/value memory) and recycles it.
func (r *recency[K, V]) release(idx int32) {
	r.nodes[idx] = node[K, V]{prev: nilIdx, next: nilIdx}
	r.free = append(r.free, idx)
}

// at returns the node stored at idx.
func (r *recency[K, V]) at(idx int32) *node[K, V] { return &r.nodes[idx] }

// pushFront links idx right after the head sentinel.
func (r *recency[K, V]) pushFront(idx int32) {
	nd := &r.nodes[idx]
	first := r.nodes[headIdx].next
	nd.prev = headIdx
	nd.next = first
	r.nodes[first].prev = idx
	r.nodes[headIdx].next = idx
	r.n++
}

// unlink detaches idx from its neighbours.
func (r *recency[K, V]) unlink(idx int32) {
	nd := &r.nodes[idx]
	r.nodes[nd.prev].next = nd.next
	r.nodes[nd.next].prev = nd.prev
	nd.prev, nd.next = nilIdx, nilIdx
	r.n--
}

// moveToFront promotes idx to MRU.
func (r *recency[K, V]) moveToFront(idx int32) {
	if r.nodes[headIdx].next == idx {
		return
	}
	r.unlink(idx)
	r.pushFront(idx)
}

// back returns the LRU data node, or nilIdx when the list is empty.
func (r *recency[K, V]) back() int32 {
	last := r.nodes[tailIdx].prev
	if last == headIdx {
		return nilIdx
	}
	return last
}

// len returns the number of linked data nodes.
func (r *recency[K, V]) len() int { return r.n }

// each walks data nodes from MRU to LRU until fn returns false.
func (r *recency[K, V]) each(fn func(idx int32, nd *node[K, V]) bool) {
	for i := r.nodes[headIdx].next; i != tailIdx; i = r.nodes[i].next {
		if !fn(i, &r.nodes[i]) {
			return
		}
	}
}
