package cache

import (
	"fmt"

	"github.com/IvanBrykalov/ttlcache/internal/util"
)

// Stats holds the cache counters. Each counter is an independent atomic, so
// recording never takes the cache lock and a snapshot is only best-effort
// consistent across counters.
type Stats struct {
	hits      util.PaddedCounter
	misses    util.PaddedCounter
	evictions util.PaddedCounter
	loads     util.PaddedCounter
	loadFails util.PaddedCounter
	expired   util.PaddedCounter
	puts      util.PaddedCounter
}

func (s *Stats) recordHit()      { s.hits.Inc() }
func (s *Stats) recordMiss()     { s.misses.Inc() }
func (s *Stats) recordEviction() { s.evictions.Inc() }
func (s *Stats) recordLoad()     { s.loads.Inc() }
func (s *Stats) recordLoadFail() { s.loadFails.Inc() }
func (s *Stats) recordExpired()  { s.expired.Inc() }
func (s *Stats) recordPut()      { s.puts.Inc() }

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Loads:     s.loads.Load(),
		LoadFails: s.loadFails.Load(),
		Expired:   s.expired.Load(),
		Puts:      s.puts.Load(),
	}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.hits.Reset()
	s.misses.Reset()
	s.evictions.Reset()
	s.loads.Reset()
	s.loadFails.Reset()
	s.expired.Reset()
	s.puts.Reset()
}

// StatsSnapshot is an immutable point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits      int64
	Misses    int64
	Evictions int64 // capacity evictions plus swept expirations
	Loads     int64 // Loader calls that returned without error
	LoadFails int64
	Expired   int64
	Puts      int64
}

// TotalRequestCount is Hits + Misses.
func (s StatsSnapshot) TotalRequestCount() int64 { return s.Hits + s.Misses }

// HitRate returns Hits / TotalRequestCount, or 0 when there were no requests.
func (s StatsSnapshot) HitRate() float64 {
	total := s.TotalRequestCount()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns Misses / TotalRequestCount, or 0 when there were no requests.
func (s StatsSnapshot) MissRate() float64 {
	total := s.TotalRequestCount()
	if total == 0 {
		return 0
	}
	return float64(s.Misses) / float64(total)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"Stats{requests=%d, hitRate=%.2f%%, missRate=%.2f%%, evictions=%d, loads=%d, loadFails=%d, expired=%d, puts=%d}",
		s.TotalRequestCount(), s.HitRate()*100, s.MissRate()*100,
		s.Evictions, s.Loads, s.LoadFails, s.Expired, s.Puts,
	)
}
