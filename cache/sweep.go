package cache

import (
	"context"
	"time"
)

// shutdownGrace bounds how long Shutdown waits for a running sweep cycle.
const shutdownGrace = 5 * time.Second

// startSweep launches the periodic expiration goroutine.
func (c *LRU[K, V]) startSweep() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopSweep = cancel
	c.sweepDone = make(chan struct{})
	go c.sweepLoop(ctx, c.opt.CleanupInterval)
}

// sweepLoop runs Sweep every interval until ctx is cancelled.
// The stop signal is checked before every cycle.
func (c *LRU[K, V]) sweepLoop(ctx context.Context, interval time.Duration) {
	defer close(c.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			c.Sweep()
		}
	}
}

// Sweep removes expired entries and returns how many were removed.
//
// Candidates are collected under the read lock; each one is re-checked under
// the write lock before removal, so an entry removed and re-inserted in
// between survives.
// Every removal counts as one expiration and one eviction.
func (c *LRU[K, V]) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}

	now := c.now()
	var candidates []K
	c.mu.RLock()
	for k, idx := range c.items {
		if c.list.at(idx).expired(now, c.ttl) {
			candidates = append(candidates, k)
		}
	}
	c.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	removed := 0
	c.mu.Lock()
	now = c.now()
	for _, k := range candidates {
		idx, ok := c.items[k]
		if !ok || !c.list.at(idx).expired(now, c.ttl) {
			continue
		}
		key, val := c.removeLocked(idx)
		removed++
		if c.opt.RecordStats {
			c.stats.recordExpired()
			c.stats.recordEviction()
		}
		c.opt.Metrics.Evict(EvictTTL)
		if cb := c.opt.OnEvict; cb != nil {
			cb(key, val, EvictTTL)
		}
	}
	size := len(c.items)
	c.mu.Unlock()

	c.opt.Metrics.Size(size)
	c.opt.Logger.WithField("removed", removed).Debug("cache: swept expired entries")
	return removed
}

// Shutdown stops the background sweep, waiting up to shutdownGrace for a
// running cycle to finish. Contents are kept and the cache stays usable.
func (c *LRU[K, V]) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.stopSweep()
		t := time.NewTimer(shutdownGrace)
		defer t.Stop()
		select {
		case <-c.sweepDone:
		case <-t.C:
			c.opt.Logger.WithField("grace", shutdownGrace).Warn("cache: sweep did not stop within grace period")
		}
	})
}

// Close calls Shutdown and always returns nil. It lets the cache be used
// where an io.Closer is expected.
func (c *LRU[K, V]) Close() error {
	c.Shutdown()
	return nil
}
