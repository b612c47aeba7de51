// Package util contains internal helpers shared by the cache packages.
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
// 64 works well in practice.
const CacheLineSize = 64

// PaddedCounter is a monotonic int64 counter padded to one cache line, so
// counters bumped by different goroutines do not false-share.
type PaddedCounter struct {
	v atomic.Int64
	_ [CacheLineSize - 8]byte
}

// Inc adds one.
func (c *PaddedCounter) Inc() { c.v.Add(1) }

// Load returns the current value.
func (c *PaddedCounter) Load() int64 { return c.v.Load() }

// Reset sets the counter back to zero.
func (c *PaddedCounter) Reset() { c.v.Store(0) }

// Compile-time size check (must be exactly one cache line).
var _ [CacheLineSize - int(unsafe.Sizeof(PaddedCounter{}))]byte
