// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"sync"
)

// Group runs fn at most once per key among concurrent callers; the other
// callers wait for and share the leader's result.
//
// Concurrency notes:
//   - Publishing (val, err) happens-before close(done), so followers reading
//     after <-done observe the final values.
//   - Cancelling ctx unblocks only that follower. The leader's fn keeps
//     running; thread ctx into fn if the work itself must stop.
type Group[K comparable, R any] struct {
	mu sync.Mutex
	m  map[K]*call[R]
}

type call[R any] struct {
	done chan struct{} // closed when val/err are published
	val  R
	err  error
	dups int // followers that joined this flight (guarded by Group.mu)
}

// Do executes fn for key unless a flight for key is already running, in which
// case it waits for that flight. shared reports whether the result came from
// (or was handed to) another caller.
func (g *Group[K, R]) Do(ctx context.Context, key K, fn func() (R, error)) (r R, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[R])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero R
			return zero, true, ctx.Err()
		}
	}

	c := &call[R]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	var dups int
	func() {
		// Release followers and the key even if fn panics.
		defer func() {
			close(c.done)
			g.mu.Lock()
			delete(g.m, key)
			dups = c.dups
			g.mu.Unlock()
		}()
		c.val, c.err = fn()
	}()

	return c.val, dups > 0, c.err
}

// InFlight returns the number of keys with a running flight.
func (g *Group[K, R]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
