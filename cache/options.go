package cache

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Defaults applied by DefaultOptions.
const (
	DefaultCapacity        = 100
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = time.Minute
)

// MaxCapacity is the largest accepted Capacity. Arena slots are addressed by
// int32 and two of them hold the list sentinels.
const MaxCapacity = math.MaxInt32 - 2

// NoExpiration disables TTL expiration when used as Options.TTL.
const NoExpiration time.Duration = 0

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: the LRU entry was dropped to admit a new key.
	EvictCapacity EvictReason = iota
	// EvictTTL: the entry outlived its TTL (lazy on Get or by the sweep).
	EvictTTL
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictTTL:
		return "ttl"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// All methods may be called concurrently, some of them under the cache lock;
// implementations must be cheap and must not call back into the cache.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	// Load reports a finished Loader call; ok is false when it failed.
	Load(ok bool)
	Put()
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Start from DefaultOptions; the zero value is
// not valid because Capacity and CleanupInterval must be positive.
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// TTL is measured from the creation of an entry (absolute, not sliding);
	// neither reads nor updates extend it.
	// NoExpiration (0) disables expiration; negative values are rejected.
	TTL time.Duration

	// CleanupInterval is the period of the background expiration sweep. Must be > 0.
	CleanupInterval time.Duration

	// RecordStats enables the counters returned by Stats.
	RecordStats bool

	// Loader fetches a value on cache miss. Optional.
	Loader Loader[K, V]

	// Observability
	// OnEvict is called for capacity and TTL evictions under the write lock;
	// keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics
	// Logger receives load failures and maintenance events. Nil => discard.
	Logger logrus.FieldLogger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}

// DefaultOptions returns Options with capacity 100, a 5 minute TTL, a one
// minute sweep and stats recording enabled.
func DefaultOptions[K comparable, V any]() Options[K, V] {
	return Options[K, V]{
		Capacity:        DefaultCapacity,
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
		RecordStats:     true,
	}
}

// Validate reports the first invalid field. Errors wrap ErrInvalidOptions.
func (o Options[K, V]) Validate() error {
	if o.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidOptions, o.Capacity)
	}
	if o.Capacity > MaxCapacity {
		return fmt.Errorf("%w: capacity must not exceed %d, got %d", ErrInvalidOptions, MaxCapacity, o.Capacity)
	}
	if o.TTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative, got %s", ErrInvalidOptions, o.TTL)
	}
	if o.CleanupInterval <= 0 {
		return fmt.Errorf("%w: cleanup interval must be positive, got %s", ErrInvalidOptions, o.CleanupInterval)
	}
	return nil
}

// withDefaults fills optional collaborators.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}
