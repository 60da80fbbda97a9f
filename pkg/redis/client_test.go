package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
)

// fakeRedis answers the cmdable surface from maps and records expiries.
type fakeRedis struct {
	values   map[string]string
	counters map[string]int64
	expiries map[string][]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, counters: map[string]int64{}, expiries: map[string][]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, taken := f.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expiries[key] = append(f.expiries[key], ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			n++
		}
		delete(f.values, k)
	}
	return redis.NewIntResult(n, nil)
}

func TestIncrWithTTLStartsWindowOnce(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	client := &Client{store: fake}
	const key = "cafe:rl:login:ip:1.2.3.4"

	for want := int64(1); want <= 3; want++ {
		count, err := client.IncrWithTTL(ctx, key, time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, count)
	}
	require.Equal(t, []time.Duration{time.Minute}, fake.expiries[key])

	_, err := client.IncrWithTTL(ctx, "cafe:no-window", 0)
	require.NoError(t, err)
	require.Empty(t, fake.expiries["cafe:no-window"])
}

func TestOptions(t *testing.T) {
	t.Run("url wins and pool settings fill gaps", func(t *testing.T) {
		opts, err := options(config.RedisConfig{URL: "redis://:pw@cache.internal:6380/2", PoolSize: 7, DialTimeout: time.Second})
		require.NoError(t, err)
		require.Equal(t, "cache.internal:6380", opts.Addr)
		require.Equal(t, 2, opts.DB)
		require.Equal(t, "pw", opts.Password)
		require.Equal(t, 7, opts.PoolSize)
		require.Equal(t, time.Second, opts.DialTimeout)
	})
	t.Run("address", func(t *testing.T) {
		opts, err := options(config.RedisConfig{Address: "localhost:6379", DB: 3})
		require.NoError(t, err)
		require.Equal(t, "localhost:6379", opts.Addr)
		require.Equal(t, 3, opts.DB)
	})
	t.Run("nothing to dial", func(t *testing.T) {
		_, err := options(config.RedisConfig{})
		require.Error(t, err)
	})
	t.Run("bad url", func(t *testing.T) {
		_, err := options(config.RedisConfig{URL: "http://cache"})
		require.Error(t, err)
	})
}

func TestContentCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeRedis()}
	key := client.ContentCacheKey("menu")

	require.NoError(t, client.Set(ctx, key, `[{"id":"1"}]`, 10*time.Minute))
	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"1"}]`, got)

	ok, err := client.SetNX(ctx, key, "other", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	require.True(t, IsMiss(err))
}

func TestZeroClient(t *testing.T) {
	ctx := context.Background()
	for _, client := range []*Client{{}, nil} {
		require.ErrorIs(t, client.Ping(ctx), errNotInitialized)
		_, err := client.Get(ctx, "k")
		require.ErrorIs(t, err, errNotInitialized)
		require.NoError(t, client.Close())
	}
}

func TestKeyLayout(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.IdempotencyKey("user-1:/api/v1/orders", "abc"): "cafe:idempotency:user-1:/api/v1/orders:abc",
		client.AccessSessionKey("jti"):                        "cafe:session:access:jti",
		client.BrowserSessionKey("tok"):                       "cafe:browser_session:tok",
		client.ContentCacheKey(" "):                           "cafe:content",
	}
	for got, want := range cases {
		require.Equal(t, want, got)
	}
}
