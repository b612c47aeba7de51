// Package redisloader implements cache.Loader on top of Redis GET, so a Redis
// instance can act as the remote data source behind an in-memory cache.
package redisloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/IvanBrykalov/ttlcache/cache"
)

// DefaultPrefix is prepended to every Redis key when Options.Prefix is empty.
const DefaultPrefix = "ttlcache:"

// Getter is the subset of redis.Cmdable used by the Loader.
// *redis.Client, *redis.ClusterClient and *redis.Ring satisfy it.
type Getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Options configures a Loader.
type Options[K comparable, V any] struct {
	// Prefix is prepended to every key. Empty => DefaultPrefix.
	Prefix string
	// KeyFunc renders a cache key as a Redis key suffix. Nil => fmt.Sprint.
	KeyFunc func(K) string
	// Decode converts the stored payload into a value. Required.
	Decode func(payload string) (V, error)
}

// Loader fetches values from Redis. A missing Redis key means "no value".
type Loader[K comparable, V any] struct {
	client  Getter
	prefix  string
	keyFunc func(K) string
	decode  func(string) (V, error)
}

// New returns a Loader reading through client.
func New[K comparable, V any](client Getter, opt Options[K, V]) (*Loader[K, V], error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", cache.ErrInvalidOptions)
	}
	if opt.Decode == nil {
		return nil, fmt.Errorf("%w: decode func is required", cache.ErrInvalidOptions)
	}
	if opt.Prefix == "" {
		opt.Prefix = DefaultPrefix
	}
	if opt.KeyFunc == nil {
		opt.KeyFunc = func(k K) string { return fmt.Sprint(k) }
	}
	return &Loader[K, V]{
		client:  client,
		prefix:  opt.Prefix,
		keyFunc: opt.KeyFunc,
		decode:  opt.Decode,
	}, nil
}

// RedisKey returns the Redis key used for k.
func (l *Loader[K, V]) RedisKey(k K) string { return l.prefix + l.keyFunc(k) }

// Load implements cache.Loader.
func (l *Loader[K, V]) Load(ctx context.Context, k K) (V, bool, error) {
	var zero V
	payload, err := l.client.Get(ctx, l.RedisKey(k)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return zero, false, nil
	case err != nil:
		return zero, false, fmt.Errorf("redis get %s: %w", l.RedisKey(k), err)
	}
	v, err := l.decode(payload)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", l.RedisKey(k), err)
	}
	return v, true, nil
}

// String is a Decode func for string values.
func String(payload string) (string, error) { return payload, nil }

// JSON returns a Decode func that unmarshals JSON payloads into V.
func JSON[V any]() func(string) (V, error) {
	return func(payload string) (V, error) {
		var v V
		err := json.Unmarshal([]byte(payload), &v)
		return v, err
	}
}

var _ cache.Loader[string, string] = (*Loader[string, string])(nil)
