package cache

import "context"

// Loader computes a value for a key the cache does not hold.
//
// Returning (zero, false, nil) means "no value": nothing is stored and the
// caller sees a miss. A non-nil error is reported as a *LoadError.
// The cache calls Load outside its locks, so a slow Loader only delays the
// goroutine that triggered it.
type Loader[K comparable, V any] interface {
	Load(ctx context.Context, k K) (V, bool, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[K comparable, V any] func(ctx context.Context, k K) (V, bool, error)

// Load implements Loader.
func (f LoaderFunc[K, V]) Load(ctx context.Context, k K) (V, bool, error) { return f(ctx, k) }
