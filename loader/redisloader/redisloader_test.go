package redisloader

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ttlcache/cache"
)

// fakeRedis answers GET from a map without a server.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
	gets []string
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, key)
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestLoad_HitMissAndError(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{"ttlcache:a": "alpha"}}
	l, err := New[string, string](fake, Options[string, string]{Decode: String})
	require.NoError(t, err)

	v, ok, err := l.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", v)

	_, ok, err = l.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok, "redis.Nil must mean no value")

	fake.err = errors.New("connection refused")
	_, ok, err = l.Load(context.Background(), "a")
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, fake.err)
}

func TestLoad_PrefixKeyFuncAndJSON(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{
		"users:7": `{"name":"ann","age":31}`,
		"users:8": `not json`,
	}}
	l, err := New[int, user](fake, Options[int, user]{
		Prefix: "users:",
		Decode: JSON[user](),
	})
	require.NoError(t, err)
	assert.Equal(t, "users:7", l.RedisKey(7))

	u, ok, err := l.Load(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user{Name: "ann", Age: 31}, u)

	_, _, err = l.Load(context.Background(), 8)
	require.Error(t, err, "bad payload must surface as a load error")
}

func TestNew_Validation(t *testing.T) {
	_, err := New[string, string](nil, Options[string, string]{Decode: String})
	assert.ErrorIs(t, err, cache.ErrInvalidOptions)

	_, err = New[string, string](&fakeRedis{}, Options[string, string]{})
	assert.ErrorIs(t, err, cache.ErrInvalidOptions)
}

// The cache loads through Redis once and then serves the value itself.
func TestLoader_BehindCache(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{"ttlcache:k": "v"}}
	l, err := New[string, string](fake, Options[string, string]{Decode: String})
	require.NoError(t, err)

	opt := cache.DefaultOptions[string, string]()
	opt.CleanupInterval = time.Hour
	opt.Loader = l
	c, err := cache.New(opt)
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	_, err = c.GetOrLoad(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{"ttlcache:k", "ttlcache:absent"}, fake.gets)
}

// Integration test against a real server; set REDIS_ADDR to enable it.
func TestLoader_LiveRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping live Redis test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	l, err := New[string, string](client, Options[string, string]{Prefix: "ttlcache-test:", Decode: String})
	require.NoError(t, err)

	require.NoError(t, client.Set(ctx, l.RedisKey("live"), "value", time.Minute).Err())
	t.Cleanup(func() { client.Del(ctx, l.RedisKey("live")) })

	v, ok, err := l.Load(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok, err = l.Load(ctx, "never-set")
	require.NoError(t, err)
	assert.False(t, ok)
}
