package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Put/Get/Remove semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: key/value lengths are capped to avoid pathological memory usage
// during fuzzing.
func FuzzCache_PutGetRemove(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		opt := DefaultOptions[string, string]()
		opt.Capacity = 2
		c := mustNew(t, opt)

		// Put -> Get must return the same value.
		if err := c.Put(k, v); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Overwrite keeps a single entry.
		_ = c.Put(k, v+"!")
		if got, _ := c.Get(k); got != v+"!" || c.Size() != 1 {
			t.Fatalf("after overwrite: got %q size=%d", got, c.Size())
		}

		// Two more distinct keys push k out of a two-slot cache.
		_ = c.Put(k+"#1", v)
		_ = c.Put(k+"#2", v)
		if c.ContainsKey(k) || c.Size() != 2 {
			t.Fatalf("k must be evicted: size=%d", c.Size())
		}

		// Remove must delete and return true once.
		_ = c.Put(k, v)
		if !c.Remove(k) {
			t.Fatalf("Remove must return true")
		}
		if c.Remove(k) {
			t.Fatalf("second Remove must return false")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Remove")
		}
		checkInvariants(t, c)
	})
}
